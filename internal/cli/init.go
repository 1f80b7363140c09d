// Package cli provides the initialization shared by the fintrack binaries and
// the fintrackctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/notify"
)

// SetupLogger builds the process logger for component at the given level and
// installs it as the slog default.
func SetupLogger(component, level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	cfg.Level = log.ParseLevel(level)
	cfg.JSON = os.Getenv("LOG_FORMAT") == "json"
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadAndValidateConfig for daemons: it exits on failure.
func MustLoadConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// OpenBackend builds the record store selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// CloseBackend runs the backend cleanup, logging any failure.
func CloseBackend(res *backend.BackendResult, logger *log.Logger) {
	if res == nil || res.Cleanup == nil {
		return
	}
	if err := res.Cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
	}
}

// Notifier returns the email notifier when alerts are configured and a no-op
// otherwise.
func Notifier(cfg *config.Config) notify.Notifier {
	if !cfg.AlertsEnabled() {
		return notify.Nop{}
	}
	return notify.NewEmailNotifier(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		Sender:    cfg.AlertSender,
		Recipient: cfg.AlertRecipient,
	})
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM, then
// runs cleanup bounded by timeout. done closes once cleanup has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}
