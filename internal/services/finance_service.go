// Package services orchestrates the record store, the projection engine and
// the outbound adapters for one user at a time.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/csvio"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/projection"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrReportsDisabled is returned by RequestReport when no publisher is wired.
var ErrReportsDisabled = errors.New("report export is not configured")

// ReportPublisher queues report requests for the sheets worker.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// FinanceData is everything a user owns.
type FinanceData struct {
	Account   core.Account         `json:"account"`
	Bills     []core.RecurringBill `json:"bills"`
	Paychecks []core.Paycheck      `json:"paychecks"`
	Expenses  []core.Expense       `json:"expenses"`
}

// Export is a rendered CSV report.
type Export struct {
	Filename string
	Start    core.Date
	End      core.Date
	Body     []byte
}

type FinanceService struct {
	store     backend.Backend
	publisher ReportPublisher
	today     func() core.Date
}

// NewFinanceService wires the service. publisher may be nil, in which case
// RequestReport returns ErrReportsDisabled.
func NewFinanceService(store backend.Backend, publisher ReportPublisher) *FinanceService {
	return &FinanceService{
		store:     store,
		publisher: publisher,
		today:     core.Today,
	}
}

// Data returns the user's account and records, creating a zero-balance
// account anchored today on first access.
func (s *FinanceService) Data(ctx context.Context, userID int64) (FinanceData, error) {
	acct, err := s.getOrCreateAccount(ctx, userID)
	if err != nil {
		return FinanceData{}, err
	}
	in, err := loadRecords(ctx, s.store, userID)
	if err != nil {
		return FinanceData{}, err
	}
	return FinanceData{
		Account:   acct,
		Bills:     in.Bills,
		Paychecks: in.Paychecks,
		Expenses:  in.Expenses,
	}, nil
}

func (s *FinanceService) getOrCreateAccount(ctx context.Context, userID int64) (core.Account, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, core.ErrAccountNotFound) {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}

	acct = core.Account{
		UserID:          userID,
		StartingBalance: decimal.Zero,
		CurrentBalance:  decimal.Zero,
		BalanceAsOfDate: s.today(),
	}
	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Created finance account", "user_id", userID, "as_of", acct.BalanceAsOfDate.String())
	return acct, nil
}

// Account returns the user's account, creating it on first access like Data.
func (s *FinanceService) Account(ctx context.Context, userID int64) (core.Account, error) {
	return s.getOrCreateAccount(ctx, userID)
}

// UpdateAccount replaces the balance fields and anchor of the user's account.
func (s *FinanceService) UpdateAccount(ctx context.Context, userID int64, acct core.Account) (core.Account, error) {
	if acct.BalanceAsOfDate.IsZero() {
		return core.Account{}, fmt.Errorf("balance as of date: %w", core.ErrInvalidDate)
	}
	acct.UserID = userID
	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	return acct, nil
}

func (s *FinanceService) inputs(ctx context.Context, userID int64) (projection.Inputs, error) {
	return loadInputs(ctx, s.store, userID)
}

// loadInputs loads the account and every record list concurrently. A missing
// account is reported as core.ErrAccountNotFound.
func loadInputs(ctx context.Context, store backend.Backend, userID int64) (projection.Inputs, error) {
	var (
		acct core.Account
		in   projection.Inputs
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		acct, err = store.GetAccount(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		in, err = loadRecords(gctx, store, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return projection.Inputs{}, err
		}
		return projection.Inputs{}, fmt.Errorf("load projection inputs: %w", err)
	}
	in.Account = acct
	return in, nil
}

func loadRecords(ctx context.Context, store backend.Backend, userID int64) (projection.Inputs, error) {
	var in projection.Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.Bills, err = store.ListBills(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		in.Paychecks, err = store.ListPaychecks(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		in.Expenses, err = store.ListExpenses(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return projection.Inputs{}, fmt.Errorf("load records: %w", err)
	}
	return in, nil
}

// Calendar projects the user's daily timeline over r.
func (s *FinanceService) Calendar(ctx context.Context, userID int64, r projection.Range) ([]projection.DailyRecord, error) {
	in, err := s.inputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, "calendar", userID, in, r), nil
}

func (s *FinanceService) project(ctx context.Context, kind string, userID int64, in projection.Inputs, r projection.Range) []projection.DailyRecord {
	started := time.Now()
	days := projection.GenerateCalendar(in, r)
	observe(kind, started, len(days))

	start, end := r.Resolve(in.Account)
	log.NewStructuredLogger(log.FromContext(ctx)).LogProjection(ctx, kind, userID, start.String(), end.String(), len(days))
	return days
}

func observe(kind string, started time.Time, days int) {
	metrics.ProjectionRuns.WithLabelValues(kind).Inc()
	metrics.ProjectionDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if days > 0 {
		metrics.ProjectionDays.Observe(float64(days))
	}
}

// MonthlySummary summarises months whole months starting with start's month.
// A zero start means the current month.
func (s *FinanceService) MonthlySummary(ctx context.Context, userID int64, start core.Date, months int) ([]core.MonthlySummary, error) {
	if months <= 0 {
		return nil, core.ErrInvalidMonths
	}
	in, err := s.inputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = s.today()
	}
	started := time.Now()
	out := projection.GetMonthlySummary(in.Paychecks, in.Bills, in.Expenses, start, months)
	observe("summary", started, 0)
	return out, nil
}

// BalanceProjections reports per-month min, max and closing balances.
func (s *FinanceService) BalanceProjections(ctx context.Context, userID int64, months int) ([]core.BalanceProjection, error) {
	in, err := s.inputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	out := projection.GetBalanceProjections(in, months)
	observe("balance", started, 0)
	return out, nil
}

// ExportCSV renders the calendar over r with its monthly summary.
func (s *FinanceService) ExportCSV(ctx context.Context, userID int64, r projection.Range) (Export, error) {
	in, err := s.inputs(ctx, userID)
	if err != nil {
		return Export{}, err
	}
	days := s.project(ctx, "export", userID, in, r)
	body, err := csvio.ExportString(days, projection.SummarizeMonths(days))
	if err != nil {
		return Export{}, fmt.Errorf("render csv: %w", err)
	}
	start, end := r.Resolve(in.Account)
	return Export{
		Filename: fmt.Sprintf("balance-report-%s-to-%s.csv", start, end),
		Start:    start,
		End:      end,
		Body:     []byte(body),
	}, nil
}

// ReportRows renders the same layout as ExportCSV for the sheets worker.
func (s *FinanceService) ReportRows(ctx context.Context, userID int64, r projection.Range) ([][]string, error) {
	in, err := s.inputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	days := s.project(ctx, "report", userID, in, r)
	return csvio.ReportRows(days, projection.SummarizeMonths(days)), nil
}

// RequestReport queues a sheets export for the user.
func (s *FinanceService) RequestReport(ctx context.Context, userID int64, r projection.Range) (*amqp.ReportRequestMessage, error) {
	if s.publisher == nil {
		return nil, ErrReportsDisabled
	}
	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	msg := amqp.NewReportRequestMessage(userID, r.Start, r.End)
	if err := s.publisher.PublishReportRequest(ctx, msg); err != nil {
		metrics.ReportRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("publish report request: %w", err)
	}
	metrics.ReportRequests.WithLabelValues("published").Inc()
	return msg, nil
}

// ImportBills parses a bill CSV and stores every valid row for the user.
func (s *FinanceService) ImportBills(ctx context.Context, userID int64, r io.Reader) ([]core.RecurringBill, error) {
	if _, err := s.getOrCreateAccount(ctx, userID); err != nil {
		return nil, err
	}

	res, err := csvio.ImportBills(r)
	if err != nil {
		return nil, fmt.Errorf("read bills csv: %w", err)
	}
	metrics.CSVImportRows.WithLabelValues("skipped").Add(float64(res.Skipped))

	if len(res.Bills) == 0 {
		return []core.RecurringBill{}, nil
	}
	created, err := s.store.CreateBills(ctx, userID, res.Bills)
	if err != nil {
		return nil, fmt.Errorf("store imported bills: %w", err)
	}
	metrics.CSVImportRows.WithLabelValues("imported").Add(float64(len(created)))

	log.NewStructuredLogger(log.FromContext(ctx)).LogBillsImported(ctx, userID, len(created), res.Skipped)
	return created, nil
}
