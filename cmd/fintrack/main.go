package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/present"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid session backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	stores, err := backend.NewFactory(logger).CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create session store", applog.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	sessions := session.NewManager(stores.Store, session.ManagerConfig{
		TTL:       cfg.SessionTTL,
		CacheSize: cfg.SessionCacheSize,
	}, logger)
	caches := cache.NewManager(logger)
	caches.Register(sessions.Live())
	caches.StartCleanup(5 * time.Minute)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sessions.RunSweeper(sweepCtx, 15*time.Minute)

	// Events are optional; without a broker the service simply skips them.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", applog.FieldError, err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	client, err := api.New(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		logger.Error("Invalid API base URL", applog.FieldError, err)
		os.Exit(1)
	}
	formatter, err := present.NewFormatter(cfg.CurrencyPrefix, cfg.Locale)
	if err != nil {
		logger.Error("Invalid presentation settings", applog.FieldError, err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		API:          client,
		Sessions:     sessions,
		Transactions: services.NewTransactionService(publisher, logger),
		Profiles:     services.NewProfileService(sessions, logger),
		Formatter:    formatter,
		ReportSource: cfg.ReportSource,
		RecentLimit:  cfg.RecentLimit,
		CookieSecure: cfg.CookieSecure,
		RateLimit:    cfg.RateLimitPerMinute,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		stopSweeper()
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close failed", applog.FieldError, err)
			}
		}
		if stores.Cleanup != nil {
			if err := stores.Cleanup(); err != nil {
				logger.Warn("Session store close failed", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		applog.FieldReportSource, cfg.ReportSource,
		"session_backend", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
