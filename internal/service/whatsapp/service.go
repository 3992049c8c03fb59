package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/config"
	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/metrics"
	"github.com/mamadbah2/piggery/internal/service/commands"
	client "github.com/mamadbah2/piggery/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrInvalidVerifyToken indicates a webhook verification attempt with a wrong token or mode.
var ErrInvalidVerifyToken = errors.New("invalid webhook verification")

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	Notify(ctx context.Context, text string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, m *metrics.Metrics, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification handshake and returns the challenge.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", fmt.Errorf("missing mode or verify token: %w", ErrInvalidVerifyToken)
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s: %w", mode, ErrInvalidVerifyToken)
	}
	if verifyToken != s.cfg.VerifyToken {
		return "", ErrInvalidVerifyToken
	}
	return challenge, nil
}

// HandleWebhook answers every inbound message. It keeps going after a failure and returns
// the first error.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	for _, status := range payload.Statuses() {
		if status.Status == "failed" {
			s.logger.Warn("outbound message failed", zap.String("message_id", status.ID), zap.String("recipient", status.RecipientID))
		}
	}

	var firstErr error
	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		reply = "Unknown command.\n" + commands.HelpText()
	case errors.Is(err, commands.ErrInvalidArguments):
		reply = fmt.Sprintf("Could not read that: %v", err)
	case err != nil:
		if sendErr := s.send(ctx, msg.From, "Sorry, the herd records are unavailable right now.", false); sendErr != nil {
			s.logger.Warn("failed to send error reply", zap.Error(sendErr))
		}
		return fmt.Errorf("dispatch %s: %w", cmd.Type, err)
	}

	return s.send(ctx, msg.From, reply, false)
}

// SendOutbound pushes an operator message. An empty recipient falls back to the farm recipient.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := req.To
	if to == "" {
		to = s.cfg.RecipientID
	}
	return s.send(ctx, to, req.Message, req.PreviewURL)
}

// Notify sends text to the configured farm recipient.
func (s *MetaWhatsAppService) Notify(ctx context.Context, text string) error {
	return s.send(ctx, s.cfg.RecipientID, text, false)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	s.metrics.ObserveMessage(err)
	if err != nil {
		return err
	}

	s.logger.Debug("message sent", zap.String("to", to), zap.String("message_id", resp.MessageID()))
	return nil
}
