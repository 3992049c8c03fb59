package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/config"
	"github.com/mamadbah2/piggery/internal/metrics"
	"github.com/mamadbah2/piggery/internal/repository/memory"
	"github.com/mamadbah2/piggery/internal/repository/mongodb"
	"github.com/mamadbah2/piggery/internal/repository/sheets"
	"github.com/mamadbah2/piggery/internal/scheduler"
	"github.com/mamadbah2/piggery/internal/server/handlers"
	"github.com/mamadbah2/piggery/internal/server/router"
	"github.com/mamadbah2/piggery/internal/settings"
	commandsvc "github.com/mamadbah2/piggery/internal/service/commands"
	dashboardsvc "github.com/mamadbah2/piggery/internal/service/dashboard"
	herdsvc "github.com/mamadbah2/piggery/internal/service/herd"
	whatsappsvc "github.com/mamadbah2/piggery/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/piggery/pkg/clients/whatsapp"
	"github.com/mamadbah2/piggery/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	farmNow := func() time.Time { return time.Now().In(loc) }

	settingsStore, err := settings.Open(cfg.Lifecycle.SettingsPath, cfg.Lifecycle.Defaults, baseLogger.Named("settings"))
	if err != nil {
		baseLogger.Fatal("failed to load settings", zap.Error(err))
	}

	var repo mongodb.Repository
	switch cfg.MongoDB.Driver {
	case config.DriverMemory:
		baseLogger.Warn("using in-memory storage, records are lost on restart")
		repo = memory.NewRepository()
	default:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		repo = mongoRepo
	}

	m := metrics.New()
	herdSvc := herdsvc.NewService(repo, settingsStore, baseLogger.Named("svc.herd"))
	dashboardSvc := dashboardsvc.NewService(herdSvc, repo, m, cfg.Reporting.SoonDays, baseLogger.Named("svc.dashboard"))

	handlerSet := router.Handlers{
		Herd:      handlers.NewHerdHandler(herdSvc, farmNow, baseLogger.Named("handlers.herd")),
		Dashboard: handlers.NewDashboardHandler(dashboardSvc, settingsStore, farmNow, baseLogger.Named("handlers.dashboard")),
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(cfg.Reporting.FarmOwnerID, dashboardSvc, herdSvc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, m, baseLogger.Named("svc.whatsapp"))
		handlerSet.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp token missing, messaging disabled")
	}

	var exporter scheduler.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewScheduleExporter(sheetsRepo, baseLogger.Named("svc.export"))
	}

	engine := router.New(handlerSet, m, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, dashboardSvc, notifier, exporter, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
