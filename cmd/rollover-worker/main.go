package main

import (
	"context"
	"os"

	"github.com/robfig/cron/v3"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(log.ComponentRollover, os.Getenv("LOG_LEVEL"))
	cfg := cli.MustLoadConfig(boot)
	logger := cli.SetupLogger(log.ComponentRollover, cfg.LogLevel)

	logger.Info("Starting rollover-worker")

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer cli.CloseBackend(res, logger)

	processor := services.NewRolloverProcessor(res.Backend, services.RolloverOptions{
		Notifier:    cli.Notifier(cfg),
		Threshold:   cfg.LowBalanceThreshold,
		HorizonDays: cfg.AlertHorizonDays,
	})

	logger.Info("Account rollover configured",
		"schedule", cfg.RolloverSchedule,
		"alerts", cfg.AlertsEnabled(),
		"backend", cfg.DataBackend)

	scheduler := cron.New()
	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		<-scheduler.Stop().Done()
	})

	run := func() {
		result, err := processor.ProcessAll(ctx, core.Today())
		if err != nil {
			logger.Error("Rollover pass failed", log.FieldError, err.Error())
			return
		}
		logger.Info("Rollover pass complete",
			"rolled", result.Rolled,
			"current", result.Current,
			"conflicts", result.Conflicts,
			"failed", result.Failed,
			"alerts", result.Alerts)
	}

	if _, err := scheduler.AddFunc(cfg.RolloverSchedule, run); err != nil {
		logger.Error("Invalid rollover schedule", log.FieldError, err.Error(), "schedule", cfg.RolloverSchedule)
		os.Exit(1)
	}

	logger.Info("Running initial rollover pass...")
	run()

	scheduler.Start()
	<-done
	logger.Info("Rollover-worker stopped")
}
