// Package csvio reads bill lists from spreadsheets exported as CSV and writes
// projection reports back out in the same format.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// ImportResult carries the bills parsed from an upload and how many data rows
// were dropped.
type ImportResult struct {
	Bills   []core.RecurringBill
	Skipped int
}

// ImportBills parses rows of the form
//
//	description, dueDate, monthlyCost[, remaining]
//
// after a header row. Rows that do not parse are skipped; only read failures
// are returned as errors. Parsed bills have no ID and carry DefaultCategory.
func ImportBills(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var res ImportResult
	header := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			if !header {
				res.Skipped++
			}
			header = false
			continue
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}

		bill, ok := parseBillRow(row)
		if !ok {
			res.Skipped++
			continue
		}
		res.Bills = append(res.Bills, bill)
	}
	return res, nil
}

func parseBillRow(row []string) (core.RecurringBill, bool) {
	if len(row) < 3 {
		return core.RecurringBill{}, false
	}
	name := strings.TrimSpace(row[0])
	dueDate := strings.TrimSpace(row[1])
	cost := strings.TrimSpace(row[2])
	remaining := ""
	if len(row) > 3 {
		remaining = strings.TrimSpace(row[3])
	}
	if name == "" || dueDate == "" || cost == "" {
		return core.RecurringBill{}, false
	}

	dueDay, ok := parseDueDay(dueDate)
	if !ok {
		return core.RecurringBill{}, false
	}

	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return core.RecurringBill{}, false
	}

	bill := core.RecurringBill{
		Name:       name,
		Amount:     amount,
		DueDay:     dueDay,
		AmountPaid: decimal.Zero,
		Category:   core.DefaultCategory,
	}
	if remaining != "" {
		if total, err := decimal.NewFromString(remaining); err == nil && total.IsPositive() {
			bill.Total = &total
		}
	}
	return bill, true
}

// parseDueDay accepts "15" or a date such as "1/15" or "1/15/2025", taking
// the component after the first slash.
func parseDueDay(s string) (int, bool) {
	if strings.Contains(s, "/") {
		s = strings.Split(s, "/")[1]
	}
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}
