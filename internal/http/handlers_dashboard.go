package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/projection"
)

const (
	defaultSummaryMonths    = 3
	defaultProjectionMonths = 24
	maxMonths               = 120
	maxUploadBytes          = 2 << 20
)

type rangeRequest struct {
	StartDate core.Date `json:"startDate"`
	EndDate   core.Date `json:"endDate"`
}

func (q rangeRequest) toRange() (projection.Range, error) {
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate) {
		return projection.Range{}, badRequest("endDate %s is before startDate %s", q.EndDate, q.StartDate)
	}
	return projection.Range{Start: q.StartDate, End: q.EndDate}, nil
}

func (q rangeRequest) key() string {
	return q.StartDate.String() + ".." + q.EndDate.String()
}

type summaryRequest struct {
	StartDate   core.Date `json:"startDate"`
	MonthsCount *int      `json:"monthsCount"`
}

type projectionRequest struct {
	ProjectionMonths *int `json:"projectionMonths"`
}

// calendarBill flattens a bill occurrence the way dashboard clients expect.
type calendarBill struct {
	core.RecurringBill
	AmountPaid *decimal.Decimal `json:"amountPaid,omitempty"`
}

type calendarDay struct {
	Date           core.Date       `json:"date"`
	Bills          []calendarBill  `json:"bills"`
	Paychecks      []core.Paycheck `json:"paychecks"`
	Expenses       []core.Expense  `json:"expenses"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

func toCalendarDays(days []projection.DailyRecord) []calendarDay {
	out := make([]calendarDay, len(days))
	for i, d := range days {
		bills := make([]calendarBill, len(d.Bills))
		for j, b := range d.Bills {
			bills[j] = calendarBill{RecurringBill: b.Bill, AmountPaid: b.AmountPaid}
		}
		out[i] = calendarDay{
			Date:           d.Date,
			Bills:          bills,
			Paychecks:      nonNil(d.Paychecks),
			Expenses:       nonNil(d.Expenses),
			RunningBalance: d.RunningBalance,
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// serveCached answers from the per-user view cache, building and storing the
// response on a miss.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, view string, build func() (any, error)) {
	scope := userScope(userID(r))
	if body, ok := s.views.Get(scope, view); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, http.StatusOK, body)
		return
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err := build()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, fmt.Errorf("encode %s: %w", view, err))
		return
	}
	s.views.Set(scope, view, body)
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := req.toRange()
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "calendar:"+req.key(), func() (any, error) {
		days, err := s.finance.Calendar(r.Context(), userID(r), rng)
		if err != nil {
			return nil, err
		}
		return toCalendarDays(days), nil
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	months, err := monthsParam(req.MonthsCount, defaultSummaryMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// An open start means "this month", so the key must roll over with the date.
	start := req.StartDate.String()
	if req.StartDate.IsZero() {
		start = "today=" + core.Today().String()
	}
	s.serveCached(w, r, "summary:"+start+":"+strconv.Itoa(months), func() (any, error) {
		return s.finance.MonthlySummary(r.Context(), userID(r), req.StartDate, months)
	})
}

func (s *Server) handleBalanceProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	months, err := monthsParam(req.ProjectionMonths, defaultProjectionMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "projection:"+strconv.Itoa(months), func() (any, error) {
		return s.finance.BalanceProjections(r.Context(), userID(r), months)
	})
}

func monthsParam(v *int, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v <= 0 || *v > maxMonths {
		return 0, fmt.Errorf("%w: got %d, max %d", core.ErrInvalidMonths, *v, maxMonths)
	}
	return *v, nil
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := req.toRange()
	if err != nil {
		writeError(w, r, err)
		return
	}

	export, err := s.finance.ExportCSV(r.Context(), userID(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Body)
}

type importResponse struct {
	Message       string  `json:"message"`
	ImportedCount int     `json:"imported_count"`
	Bills         []int64 `json:"bills"`
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
			return
		}
		writeError(w, r, badRequest("invalid multipart body: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest("missing file field"))
		return
	}
	defer file.Close()

	uid := userID(r)
	bills, err := s.finance.ImportBills(r.Context(), uid, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)

	ids := make([]int64, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	writeJSON(w, http.StatusOK, importResponse{
		Message:       "Bills imported successfully",
		ImportedCount: len(bills),
		Bills:         ids,
	})
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := req.toRange()
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := s.finance.RequestReport(r.Context(), userID(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "queued",
		"messageId": msg.ID,
	})
}
