package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/projection"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

type fakeSource struct {
	rows [][]string
	err  error
	got  projection.Range
}

func (f *fakeSource) ReportRows(_ context.Context, _ int64, r projection.Range) ([][]string, error) {
	f.got = r
	return f.rows, f.err
}

type failingWriter struct{}

func (failingWriter) WriteReport(context.Context, sheets.Report) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestReportWorker_HandleReportRequest(t *testing.T) {
	ctx := context.Background()
	start := core.NewDate(2025, 1, 1)
	msg := amqp.NewReportRequestMessage(5, start, core.Date{})

	t.Run("writes report", func(t *testing.T) {
		src := &fakeSource{rows: [][]string{{"MONTHLY SUMMARY"}}}
		out := memory.New()
		w := NewReportWorker(src, out)

		if err := w.HandleReportRequest(ctx, msg); err != nil {
			t.Fatalf("HandleReportRequest() error = %v", err)
		}
		if !src.got.Start.Equal(start) || !src.got.End.IsZero() {
			t.Errorf("range passed = %+v", src.got)
		}
		r, ok := out.Report(5)
		if !ok || r.Rows[0][0] != "MONTHLY SUMMARY" || r.GeneratedAt.IsZero() {
			t.Errorf("report = %+v, %v", r, ok)
		}
	})

	t.Run("drops missing account", func(t *testing.T) {
		out := memory.New()
		w := NewReportWorker(&fakeSource{err: core.ErrAccountNotFound}, out)
		if err := w.HandleReportRequest(ctx, msg); err != nil {
			t.Fatalf("HandleReportRequest() error = %v, want nil", err)
		}
		if out.Writes() != 0 {
			t.Error("nothing should be written")
		}
	})

	t.Run("requeues on source error", func(t *testing.T) {
		w := NewReportWorker(&fakeSource{err: errors.New("db locked")}, memory.New())
		if err := w.HandleReportRequest(ctx, msg); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("requeues on writer error", func(t *testing.T) {
		w := NewReportWorker(&fakeSource{rows: [][]string{{"x"}}}, failingWriter{})
		if err := w.HandleReportRequest(ctx, msg); err == nil {
			t.Fatal("expected error")
		}
	})
}
