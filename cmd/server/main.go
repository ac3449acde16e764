package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/storefront/internal/catalog"
	"github.com/mamadbah2/storefront/internal/config"
	"github.com/mamadbah2/storefront/internal/domain/models"
	"github.com/mamadbah2/storefront/internal/repository/memory"
	"github.com/mamadbah2/storefront/internal/repository/mongodb"
	"github.com/mamadbah2/storefront/internal/repository/sheets"
	"github.com/mamadbah2/storefront/internal/scheduler"
	"github.com/mamadbah2/storefront/internal/server/handlers"
	"github.com/mamadbah2/storefront/internal/server/router"
	checkoutsvc "github.com/mamadbah2/storefront/internal/service/checkout"
	reportingsvc "github.com/mamadbah2/storefront/internal/service/reporting"
	"github.com/mamadbah2/storefront/internal/service/session"
	"github.com/mamadbah2/storefront/pkg/clients/receipts"
	"github.com/mamadbah2/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	var baseLogger *zap.Logger
	if cfg.Log.File != "" {
		baseLogger = logger.Must(logger.NewRotating(cfg.Log.Level, cfg.Log.File))
	} else {
		baseLogger = logger.Must(logger.New(cfg.Log.Level))
	}
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	seed, err := loadSeed(cfg.Catalog)
	if err != nil {
		baseLogger.Fatal("failed to read catalog seed", zap.String("file", cfg.Catalog.File), zap.Error(err))
	}

	cat, err := catalog.Seed(seed, loc)
	if err != nil {
		baseLogger.Fatal("failed to seed catalog", zap.Error(err))
	}

	customer, err := models.NewCustomer(cfg.Customer.Name, cfg.Customer.Balance)
	if err != nil {
		baseLogger.Fatal("invalid customer", zap.Error(err))
	}

	archive := memory.NewReceiptStore()
	sinks := []checkoutsvc.ReceiptSink{archive}

	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewReceiptRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks = append(sinks, mongoRepo)
	} else {
		baseLogger.Warn("MONGODB_URI missing, receipts are not archived in mongodb")
	}

	var reports handlers.SalesReporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets ledger", zap.Error(err))
		}
		sinks = append(sinks, sheets.NewLedgerRepository(sheetsRepo, cfg.Sheets.LedgerRange))
		reports = reportingsvc.NewService(sheetsRepo, cfg.Sheets.LedgerRange, baseLogger.Named("svc.reporting"))
	}

	if cfg.Webhook.URL != "" {
		sinks = append(sinks, receipts.NewClient(cfg.Webhook))
		baseLogger.Info("receipt webhook enabled")
	}

	checkoutSvc := checkoutsvc.NewService(checkoutsvc.Options{
		ShippingFee: cfg.Checkout.ShippingFee,
		VerifyStock: cfg.Checkout.VerifyStock,
	}, baseLogger.Named("svc.checkout"), sinks...)
	sess := session.New(cat, customer, checkoutSvc, baseLogger.Named("svc.session"))

	handler := handlers.NewStorefrontHandler(sess, archive, reports, baseLogger.Named("handlers.storefront"))
	engine := router.New(handler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, cat, baseLogger.Named("scheduler"))
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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

func loadSeed(cfg config.CatalogConfig) ([]catalog.SeedEntry, error) {
	if cfg.File == "" {
		return catalog.DefaultSeed(), nil
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return catalog.LoadSeed(f)
}
