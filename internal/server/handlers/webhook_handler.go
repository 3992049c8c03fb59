package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	service "github.com/mamadbah2/piggery/internal/service/whatsapp"
)

const whatsappObject = "whatsapp_business_account"

// WebhookHandler carries farm commands in from WhatsApp and operator messages out.
type WebhookHandler struct {
	messaging service.MessagingService
	logger    *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(messaging service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{messaging: messaging, logger: logger}
}

// Register mounts the webhook and operator routes on r.
func (h *WebhookHandler) Register(r gin.IRouter) {
	r.GET("/webhook", h.Subscribe)
	r.POST("/webhook", h.Commands)
	r.POST("/send-message", h.Broadcast)
}

// Subscribe answers the hub.challenge handshake.
func (h *WebhookHandler) Subscribe(c *gin.Context) {
	challenge, err := h.messaging.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook subscription refused", zap.String("mode", c.Query("hub.mode")), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Commands feeds inbound messages to the command dispatcher. Dispatch failures are
// acknowledged with 200 so a command that already got a reply is not redelivered.
func (h *WebhookHandler) Commands(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if payload.Object != whatsappObject {
		h.logger.Debug("ignoring foreign webhook object", zap.String("object", payload.Object))
		c.Status(http.StatusNotFound)
		return
	}

	messages := payload.Messages()
	commands := 0
	for _, msg := range messages {
		if strings.TrimSpace(msg.Body()) != "" {
			commands++
		}
	}
	log := h.logger.With(zap.Int("messages", len(messages)), zap.Int("commands", commands), zap.Int("statuses", len(payload.Statuses())))

	if err := h.messaging.HandleWebhook(c.Request.Context(), payload); err != nil {
		log.Error("command dispatch failed", zap.Error(err))
	} else if commands > 0 {
		log.Info("commands dispatched")
	}
	c.Status(http.StatusOK)
}

// Broadcast pushes an operator message, by default to the farm recipient.
func (h *WebhookHandler) Broadcast(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		respondError(c, h.logger, models.Violations{"message": "required"}.Err())
		return
	}

	if err := h.messaging.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("operator message not delivered", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.Status(http.StatusAccepted)
}
