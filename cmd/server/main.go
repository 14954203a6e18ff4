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

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/repository/mongodb"
	"github.com/rpmontada/equinos/internal/repository/sheets"
	"github.com/rpmontada/equinos/internal/scheduler"
	"github.com/rpmontada/equinos/internal/server/handlers"
	"github.com/rpmontada/equinos/internal/server/router"
	commandsvc "github.com/rpmontada/equinos/internal/service/commands"
	exportsvc "github.com/rpmontada/equinos/internal/service/export"
	"github.com/rpmontada/equinos/internal/service/flow"
	historysvc "github.com/rpmontada/equinos/internal/service/history"
	remindersvc "github.com/rpmontada/equinos/internal/service/reminder"
	whatsappsvc "github.com/rpmontada/equinos/internal/service/whatsapp"
	workloadsvc "github.com/rpmontada/equinos/internal/service/workload"
	"github.com/rpmontada/equinos/pkg/clients/records"
	whatsappclient "github.com/rpmontada/equinos/pkg/clients/whatsapp"
	"github.com/rpmontada/equinos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	recordsClient := records.NewClient(cfg.Records, baseLogger.Named("client.records"))

	workloadSvc := workloadsvc.NewService(recordsClient, baseLogger.Named("svc.workload"), workloadsvc.WithClock(now))
	reminderSvc := remindersvc.NewService(recordsClient, remindersvc.Policy{
		WindowDays:  cfg.Reminders.WindowDays,
		FlagOverdue: cfg.Reminders.FlagOverdue,
	}, now, baseLogger.Named("svc.reminder"))
	historySvc := historysvc.NewService(recordsClient, baseLogger.Named("svc.history"))

	var exporter handlers.AnnualExporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = exportsvc.NewService(sheetsRepo, cfg.Sheets.WorkloadRange, baseLogger.Named("svc.export"))
	} else {
		baseLogger.Warn("google sheets not configured, export disabled")
	}

	jobs := scheduler.Jobs{Reminders: reminderSvc, Workload: workloadSvc}

	var snapshots handlers.SnapshotReader
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshots = mongoRepo
		jobs.Store = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, workload archive disabled")
	}

	var messagingSvc whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		flowLogger := baseLogger.Named("svc.flow")
		sessions := commandsvc.NewSessionManager(flow.RealScheduler{}, cfg.Flow.DismissAfter, cfg.Flow.PromptExpiry, func(sender, target string) {
			flowLogger.Debug("deletion confirmation dismissed", zap.String("sender", sender), zap.String("schedule", target))
		})
		dispatcher := commandsvc.NewService(workloadSvc, reminderSvc, recordsClient, sessions, baseLogger.Named("svc.commands"), commandsvc.WithClock(now))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		metaSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, baseLogger.Named("svc.whatsapp"))
		messagingSvc = metaSvc
		jobs.Notifier = metaSvc
	} else {
		baseLogger.Warn("whatsapp not configured, chat channel disabled")
	}

	engine := router.New(router.Handlers{
		Webhook:   handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
		Workload:  handlers.NewWorkloadHandler(workloadSvc, snapshots, baseLogger.Named("handlers.workload")),
		Reminders: handlers.NewReminderHandler(reminderSvc, baseLogger.Named("handlers.reminder")),
		Visits:    handlers.NewVisitHandler(historySvc, baseLogger.Named("handlers.visit")),
		Export:    handlers.NewExportHandler(workloadSvc, exporter, baseLogger.Named("handlers.export")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, loc, jobs, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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
