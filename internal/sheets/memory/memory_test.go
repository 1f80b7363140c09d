package memory

import (
	"context"
	"testing"

	"fintrack/internal/sheets"
)

func TestStoreWriteReport(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.WriteReport(ctx, sheets.Report{UserID: 1}); err == nil {
		t.Fatal("expected error for empty report")
	}

	ref, err := s.WriteReport(ctx, sheets.Report{UserID: 1, Rows: [][]string{{"a"}}})
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if ref != "mem:1:1" {
		t.Errorf("ref = %q", ref)
	}

	if _, err := s.WriteReport(ctx, sheets.Report{UserID: 1, Rows: [][]string{{"b"}, {"c"}}}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	got, ok := s.Report(1)
	if !ok || len(got.Rows) != 2 || got.Rows[0][0] != "b" {
		t.Errorf("Report(1) = %+v, %v; want latest write", got, ok)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
	if _, ok := s.Report(2); ok {
		t.Error("unexpected report for user 2")
	}
}
