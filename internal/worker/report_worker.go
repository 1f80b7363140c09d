package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/projection"
	"fintrack/internal/sheets"
)

// ReportSource renders a user's projection report.
type ReportSource interface {
	ReportRows(ctx context.Context, userID int64, r projection.Range) ([][]string, error)
}

// ReportWorker turns queued report requests into spreadsheet tabs.
type ReportWorker struct {
	source ReportSource
	writer sheets.ReportWriter
	now    func() time.Time
}

func NewReportWorker(source ReportSource, writer sheets.ReportWriter) *ReportWorker {
	return &ReportWorker{
		source: source,
		writer: writer,
		now:    time.Now,
	}
}

// HandleReportRequest processes one message. Requests for users without an
// account are dropped; any other failure is returned so the message is
// requeued.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	slog.InfoContext(ctx, "Processing report request",
		"message_id", msg.ID,
		"user_id", msg.UserID,
		"requested_at", msg.RequestedAt)

	rows, err := w.source.ReportRows(ctx, msg.UserID, projection.Range{Start: msg.Start, End: msg.End})
	if errors.Is(err, core.ErrAccountNotFound) {
		slog.WarnContext(ctx, "Dropping report request for missing account",
			"message_id", msg.ID,
			"user_id", msg.UserID)
		metrics.ReportRequests.WithLabelValues("dropped").Inc()
		return nil
	}
	if err != nil {
		metrics.ReportRequests.WithLabelValues("failed").Inc()
		return fmt.Errorf("render report: %w", err)
	}

	ref, err := w.writer.WriteReport(ctx, sheets.Report{
		UserID:      msg.UserID,
		Rows:        rows,
		GeneratedAt: w.now(),
	})
	if err != nil {
		metrics.ReportRequests.WithLabelValues("failed").Inc()
		return fmt.Errorf("write report: %w", err)
	}
	metrics.ReportRequests.WithLabelValues("written").Inc()

	slog.InfoContext(ctx, "Report written",
		"message_id", msg.ID,
		"user_id", msg.UserID,
		"rows", len(rows),
		"ref", ref)
	return nil
}
