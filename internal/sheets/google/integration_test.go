//go:build integration

package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	ports "fintrack/internal/sheets"
)

// Run with: go test -tags=integration ./internal/sheets/google
func TestIntegration_WriteReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	opts := Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       "Integration",
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if opts.CredentialsJSON == "" && opts.CredentialsFile == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ref, err := client.WriteReport(ctx, ports.Report{
		UserID:      999,
		Rows:        [][]string{{"MONTHLY SUMMARY"}, {"Month", "Income"}, {"January 2025", "100.00"}},
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if !strings.HasPrefix(ref, "'Integration 999'!A1:B3") {
		t.Errorf("unexpected ref %q", ref)
	}
}
