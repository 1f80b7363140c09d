package main

import (
	"context"
	"errors"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.MustLoadConfig(boot)
	logger := cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)

	logger.Info("Starting fintrack-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the report worker")
		os.Exit(1)
	}

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer cli.CloseBackend(res, logger)

	var writer sheets.ReportWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - reports are kept in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := worker.NewReportWorker(services.NewFinanceService(res.Backend, nil), writer)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	if err := amqpClient.ConsumeReportRequests(ctx, reports.HandleReportRequest); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
	}

	<-done
	logger.Info("Worker stopped")
}
