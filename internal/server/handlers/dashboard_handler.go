package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/internal/service/dashboard"
)

// SettingsStore reads and replaces the lifecycle durations.
type SettingsStore interface {
	Durations() lifecycle.Durations
	Update(d lifecycle.Durations) (lifecycle.Durations, error)
}

// DashboardHandler serves the derived views: events, calendar, dashboard and settings.
type DashboardHandler struct {
	svc      *dashboard.Service
	settings SettingsStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardHandler constructs the handler. now supplies the farm-local clock.
func NewDashboardHandler(svc *dashboard.Service, settings SettingsStore, now func() time.Time, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{svc: svc, settings: settings, logger: logger, now: now}
}

// Register mounts the derived-view routes on g.
func (h *DashboardHandler) Register(g *gin.RouterGroup) {
	g.GET("/events/farrow", h.FarrowEvents)
	g.GET("/events/saleable", h.SaleableEvents)
	g.GET("/calendar", h.Calendar)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.PutSettings)
}

func eventQuery(c *gin.Context) (dashboard.EventQuery, error) {
	q := dashboard.EventQuery{Search: c.Query("q")}
	if raw := c.Query("within"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, errors.New("within must be a non-negative integer")
		}
		q.WithinDays = n
	}
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errors.New("all must be a boolean")
		}
		q.IncludeResolved = all
	}
	return q, nil
}

// FarrowEvents lists pending farrow events. ?all=true includes farrowed ones.
func (h *DashboardHandler) FarrowEvents(c *gin.Context) {
	q, err := eventQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := h.svc.FarrowEvents(c.Request.Context(), userID(c), h.now(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// SaleableEvents lists pending saleable events. ?all=true includes sold ones.
func (h *DashboardHandler) SaleableEvents(c *gin.Context) {
	q, err := eventQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := h.svc.SaleableEvents(c.Request.Context(), userID(c), h.now(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Calendar returns the marked days of ?year=&month=, defaulting to the current month.
func (h *DashboardHandler) Calendar(c *gin.Context) {
	now := h.now()
	year, month := now.Year(), int(now.Month())

	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		year = v
	}
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
			return
		}
		month = v
	}

	days, err := h.svc.Calendar(c.Request.Context(), userID(c), now, year, time.Month(month))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":      year,
		"month":     month,
		"soon_days": h.svc.SoonDays(),
		"days":      days,
	})
}

// Dashboard returns the herd overview; ?q= narrows the event lists.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	d, err := h.svc.Build(c.Request.Context(), userID(c), h.now(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Durations())
}

func (h *DashboardHandler) PutSettings(c *gin.Context) {
	var d lifecycle.Durations
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	updated, err := h.settings.Update(d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
