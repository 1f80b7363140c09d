package sheets

import (
	"context"
	"time"
)

// Report is a rendered projection ready to be written to a spreadsheet.
type Report struct {
	UserID      int64
	Rows        [][]string
	GeneratedAt time.Time
}

// ReportWriter replaces a user's report tab with the given rows and returns a
// reference to the written range.
type ReportWriter interface {
	WriteReport(ctx context.Context, r Report) (ref string, err error)
}
