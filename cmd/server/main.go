package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/config"
	"github.com/mamadbah2/fleetbook/internal/repository"
	"github.com/mamadbah2/fleetbook/internal/repository/memory"
	"github.com/mamadbah2/fleetbook/internal/repository/mongodb"
	"github.com/mamadbah2/fleetbook/internal/repository/sheets"
	"github.com/mamadbah2/fleetbook/internal/scheduler"
	"github.com/mamadbah2/fleetbook/internal/server/handlers"
	"github.com/mamadbah2/fleetbook/internal/server/router"
	alertsvc "github.com/mamadbah2/fleetbook/internal/service/alerts"
	analyticssvc "github.com/mamadbah2/fleetbook/internal/service/analytics"
	"github.com/mamadbah2/fleetbook/internal/service/notify"
	"github.com/mamadbah2/fleetbook/internal/service/records"
	"github.com/mamadbah2/fleetbook/internal/service/revenue"
	whatsappclient "github.com/mamadbah2/fleetbook/pkg/clients/whatsapp"
	"github.com/mamadbah2/fleetbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.Store
	switch cfg.Store.Driver {
	case config.StoreMemory:
		store = memory.NewStore()
		baseLogger.Warn("using in-memory store, data is lost on exit")
	default:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	}

	var notifier alertsvc.Notifier
	if cfg.WhatsApp.Enabled() {
		client := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = notify.NewWhatsAppNotifier(client, cfg.WhatsApp.NotifyTo, baseLogger.Named("svc.notify"))
		baseLogger.Info("whatsapp alert notifications enabled")
	} else {
		baseLogger.Info("whatsapp credentials missing, alert notifications disabled")
	}

	recordSvc := records.NewService(store, baseLogger.Named("svc.records"))
	reconciler := revenue.NewReconciler(store, baseLogger.Named("svc.revenue"))
	fleet := records.NewFleet(recordSvc, reconciler)
	alertSvc := alertsvc.NewService(store, notifier, baseLogger.Named("svc.alerts"))
	analyticsSvc := analyticssvc.NewService(store, cfg.Analytics.DefaultDays, baseLogger.Named("svc.analytics"))

	handlerLogger := baseLogger.Named("handlers")
	engine := router.New(router.Handlers{
		Dashboard:      handlers.NewDashboardHandler(analyticsSvc, alertSvc, cfg.Analytics.MaxDays, handlerLogger),
		Trips:          handlers.NewTripHandler(fleet, handlerLogger),
		Trucks:         handlers.NewTruckHandler(fleet, handlerLogger),
		Employees:      handlers.NewRecordHandler(recordSvc, records.Employees, "employee", "employees", handlerLogger),
		Expenses:       handlers.NewRecordHandler(recordSvc, records.Expenses, "expense", "expenses", handlerLogger),
		ClientPayments: handlers.NewRecordHandler(recordSvc, records.ClientPayments, "client_payment", "client_payments", handlerLogger),
	}, baseLogger.Named("router"))

	location, err := time.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Alerts.Timezone), zap.Error(err))
	}

	opts := scheduler.Options{
		AlertSchedule: cfg.Alerts.SweepSchedule,
		SnapshotDays:  cfg.Analytics.DefaultDays,
		Location:      location,
	}
	var sheet sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetsRepo
		opts.SnapshotSchedule = cfg.Sheets.ExportSchedule
	}

	sched := scheduler.NewScheduler(opts, alertSvc, analyticsSvc, sheet, baseLogger.Named("scheduler"))
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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
