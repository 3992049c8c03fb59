package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/config"
	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/internal/service/dashboard"
)

const jobTimeout = 2 * time.Minute

// Reporter derives the daily report content.
type Reporter interface {
	Digest(ctx context.Context, userID string, now time.Time) (string, error)
	SaveSnapshot(ctx context.Context, userID string, now time.Time) (models.DashboardSnapshot, error)
	FarrowEvents(ctx context.Context, userID string, now time.Time, q dashboard.EventQuery) ([]models.FarrowEvent, error)
	SaleableEvents(ctx context.Context, userID string, now time.Time, q dashboard.EventQuery) ([]models.SaleableEvent, error)
}

// Notifier delivers the digest to the farm.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Exporter publishes the pending schedule.
type Exporter interface {
	Export(ctx context.Context, farrows []models.FarrowEvent, saleables []models.SaleableEvent) error
}

// Scheduler runs the daily herd report.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	location *time.Location
	reporter Reporter
	notifier Notifier
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler evaluating cfg.CronSchedule in cfg.Timezone.
// notifier and exporter may be nil when the integration is disabled.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, notifier Notifier, exporter Exporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		location: loc,
		reporter: reporter,
		notifier: notifier,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.FarmOwnerID == "" {
		s.logger.Warn("FARM_OWNER_ID not set, daily report disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.String("timezone", s.location.String()),
	)
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("daily report completed")
}

// RunDailyReport sends the digest, saves the dashboard snapshot and exports the schedule.
// Each step runs even when an earlier one fails.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	owner := s.cfg.FarmOwnerID
	today := lifecycle.StartOfDay(s.now().In(s.location))

	s.logger.Info("generating daily report", zap.String("user_id", owner), zap.Time("date", today))

	var errs []error

	if s.notifier != nil {
		digest, err := s.reporter.Digest(ctx, owner, today)
		if err == nil {
			err = s.notifier.Notify(ctx, digest)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("send digest: %w", err))
		}
	}

	if _, err := s.reporter.SaveSnapshot(ctx, owner, today); err != nil {
		errs = append(errs, err)
	}

	if s.exporter != nil {
		if err := s.export(ctx, owner, today); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Scheduler) export(ctx context.Context, owner string, today time.Time) error {
	farrows, err := s.reporter.FarrowEvents(ctx, owner, today, dashboard.EventQuery{})
	if err != nil {
		return fmt.Errorf("load farrow schedule: %w", err)
	}
	saleables, err := s.reporter.SaleableEvents(ctx, owner, today, dashboard.EventQuery{})
	if err != nil {
		return fmt.Errorf("load saleable schedule: %w", err)
	}
	return s.exporter.Export(ctx, farrows, saleables)
}
