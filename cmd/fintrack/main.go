package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.MustLoadConfig(boot)
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer cli.CloseBackend(res, logger)

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, sheets export disabled", log.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized - sheets export enabled")
		}
	} else {
		logger.Info("AMQP disabled - sheets export unavailable")
	}

	finance := services.NewFinanceService(res.Backend, publisher)

	var ready func(ctx context.Context) error
	if p, ok := res.Backend.(pinger); ok {
		ready = p.Ping
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		Finance:      finance,
		Tokens:       auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Logger:       logger.WithComponent(log.ComponentHTTP),
		RateLimitRPM: cfg.RateLimitRPM,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
		Ready:        ready,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
