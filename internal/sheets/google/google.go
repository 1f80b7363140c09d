package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	mu    sync.Mutex
	known map[string]bool
}

var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetBase := strings.TrimSpace(opts.SheetName)
	if sheetBase == "" {
		sheetBase = "Projection"
	}

	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"component", "sheets",
		"spreadsheet_id", spreadsheetID,
		"sheet_base", sheetBase)

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		known:         make(map[string]bool),
	}, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// WriteReport clears the user's tab, creating it on first use, and writes the
// rows starting at A1.
func (c *Client) WriteReport(ctx context.Context, r ports.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(r.Rows) == 0 {
		return "", errors.New("report has no rows")
	}

	sheet := sheetName(c.sheetBase, r.UserID)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	clearRange := fmt.Sprintf("'%s'!A:Z", sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	ref := fmt.Sprintf("'%s'!A1:%s%d", sheet, columnLetter(width(r.Rows)), len(r.Rows))
	vr := &gsheet.ValueRange{Values: toValues(r.Rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", sheet, err)
	}

	return ref, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	c.mu.Lock()
	ok := c.known[name]
	c.mu.Unlock()
	if ok {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	exists := false
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == name {
			exists = true
			break
		}
	}

	if !exists {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		slog.InfoContext(ctx, "Created report sheet", "component", "sheets", "sheet", name)
	}

	c.mu.Lock()
	c.known[name] = true
	c.mu.Unlock()
	return nil
}

// sheetName returns the per-user tab name, e.g. "Projection 42".
func sheetName(base string, userID int64) string {
	return fmt.Sprintf("%s %d", base, userID)
}

func width(rows [][]string) int {
	w := 1
	for _, r := range rows {
		w = max(w, len(r))
	}
	return w
}

// columnLetter converts a 1-based column index to A1 notation.
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}
