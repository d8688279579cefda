package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensedash/internal/api"
	"expensedash/internal/config"
	"expensedash/internal/events"
	"expensedash/internal/export"
	apphttp "expensedash/internal/http"
	applog "expensedash/internal/log"
	"expensedash/internal/report"
	"expensedash/internal/session"
	"expensedash/internal/ws"
)

func main() {
	// .env is a convenience for local runs; a missing file is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	var store session.Store
	switch cfg.TokenBackend {
	case "sqlite":
		s, err := session.NewSQLiteStore(cfg.TokenDBPath)
		if err != nil {
			logger.Error("Failed to open token store",
				applog.FieldError, err.Error(),
				"path", cfg.TokenDBPath)
			os.Exit(1)
		}
		store = s
		logger.Info("Initialized sqlite token store", "path", cfg.TokenDBPath)
	default:
		store = session.NewMemoryStore()
		logger.Info("Initialized in-memory token store")
	}
	defer store.Close()

	provider := session.NewProvider(store)
	client := api.New(cfg.APIBaseURL, cfg.APITimeout)

	var publisher report.CreatedPublisher
	if cfg.EventsEnabled() {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		logger.Info("Initialized AMQP publisher",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	}

	reports := report.NewService(report.ServiceConfig{
		Provider:  provider,
		API:       client,
		Deriver:   report.NewDeriver(cfg.DisplayDateLayout),
		Publisher: publisher,
		Logger:    logger.WithComponent(applog.ComponentReport),
		CacheTTL:  cfg.ReportCacheTTL,
		CacheSize: cfg.ReportCacheSize,
	})

	var exporter apphttp.Exporter
	if cfg.ExportEnabled() {
		e, err := export.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize spreadsheet export", applog.FieldError, err.Error())
			os.Exit(1)
		}
		exporter = e
		logger.Info("Initialized spreadsheet export", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	hub := ws.NewHub()
	hub.Start()
	defer hub.Stop()
	reports.Subscribe(hub.BroadcastView)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Provider:       provider,
		Auth:           client,
		Reports:        reports,
		Exporter:       exporter,
		Hub:            hub,
		CurrencySymbol: cfg.CurrencySymbol,
		Logger:         logger.WithComponent(applog.ComponentHTTP),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting expensedash server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"token_backend", cfg.TokenBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
