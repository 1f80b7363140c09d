package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/projection"
)

var (
	summaryHeader = []string{"Month", "Income", "Bills", "Expenses", "Net Change", "End Balance"}
	dailyHeader   = []string{"Date", "Day of Week", "Income", "Bills", "Expenses", "Net Change", "Balance", "Details"}
)

// ExportCSV writes the report rows as CSV with CRLF line endings.
func ExportCSV(w io.Writer, days []projection.DailyRecord, months []core.MonthlySummary) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.WriteAll(ReportRows(days, months)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReportRows lays out a two section report: one row per month, a blank row,
// then one row per day.
func ReportRows(days []projection.DailyRecord, months []core.MonthlySummary) [][]string {
	rows := [][]string{{"MONTHLY SUMMARY"}, summaryHeader}
	for _, m := range months {
		rows = append(rows, []string{
			m.Label,
			core.FormatAmount(m.Income),
			core.FormatAmount(m.Bills),
			core.FormatAmount(m.Expenses),
			core.FormatAmount(m.Net),
			core.FormatAmount(m.EndBalance),
		})
	}
	rows = append(rows, []string{}, []string{"DAILY BREAKDOWN"}, dailyHeader)
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.String(),
			d.Date.Format("Mon"),
			core.FormatAmount(d.Income()),
			core.FormatAmount(d.BillTotal()),
			core.FormatAmount(d.ExpenseTotal()),
			core.FormatAmount(d.Net()),
			core.FormatAmount(d.RunningBalance),
			details(d),
		})
	}
	return rows
}

// ExportString renders the report into memory.
func ExportString(days []projection.DailyRecord, months []core.MonthlySummary) (string, error) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, days, months); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func details(d projection.DailyRecord) string {
	var parts []string
	for _, p := range d.Paychecks {
		parts = append(parts, fmt.Sprintf("+$%s (Paycheck)", core.FormatAmount(p.Amount)))
	}
	for _, b := range d.Bills {
		parts = append(parts, fmt.Sprintf("-$%s (%s)", core.FormatAmount(b.Bill.Amount), b.Bill.Name))
	}
	for _, e := range d.Expenses {
		parts = append(parts, fmt.Sprintf("-$%s (%s)", core.FormatAmount(e.Amount), e.Name))
	}
	return strings.Join(parts, "; ")
}
