package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/notify"
	"fintrack/internal/projection"

	"github.com/shopspring/decimal"
)

// RolloverOptions controls the low-balance check that follows a rollover.
// Alerts are off when Notifier is nil.
type RolloverOptions struct {
	Notifier    notify.Notifier
	Threshold   decimal.Decimal
	HorizonDays int
}

// RolloverResult counts what one pass did.
type RolloverResult struct {
	Rolled    int
	Current   int
	Conflicts int
	Failed    int
	Alerts    int
}

// RolloverProcessor moves each account's anchor forward to today. The
// elapsed days are settled with the projection engine and the resulting
// balance and tracked bill payments are written back, so projections from
// today onward are unchanged.
type RolloverProcessor struct {
	store backend.Backend
	opts  RolloverOptions
}

func NewRolloverProcessor(store backend.Backend, opts RolloverOptions) *RolloverProcessor {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	return &RolloverProcessor{store: store, opts: opts}
}

// ProcessAll rolls every account. Failures are logged and counted; the pass
// continues with the next user.
func (p *RolloverProcessor) ProcessAll(ctx context.Context, today core.Date) (RolloverResult, error) {
	var res RolloverResult

	userIDs, err := p.store.ListUserIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}

	slog.InfoContext(ctx, "Processing account rollover",
		"total_accounts", len(userIDs),
		"processing_date", today.String())

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rolled, alerted, err := p.processUser(ctx, userID, today)
		switch {
		case errors.Is(err, core.ErrConflict):
			// the next pass reads the edited account and rolls from there
			res.Conflicts++
			metrics.RolloverAccounts.WithLabelValues("conflict").Inc()
			slog.WarnContext(ctx, "Account changed during rollover, skipped", "user_id", userID)
			continue
		case err != nil:
			res.Failed++
			metrics.RolloverAccounts.WithLabelValues("failed").Inc()
			log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Failed to roll account", err,
				log.ComponentRollover, log.OpRollover, log.NewFields().WithUser(userID))
			continue
		case rolled:
			res.Rolled++
			metrics.RolloverAccounts.WithLabelValues("rolled").Inc()
		default:
			res.Current++
			metrics.RolloverAccounts.WithLabelValues("current").Inc()
		}
		if alerted {
			res.Alerts++
		}
	}

	slog.InfoContext(ctx, "Account rollover complete",
		"rolled", res.Rolled,
		"current", res.Current,
		"conflicts", res.Conflicts,
		"failed", res.Failed,
		"alerts", res.Alerts)

	return res, nil
}

func (p *RolloverProcessor) processUser(ctx context.Context, userID int64, today core.Date) (rolled, alerted bool, err error) {
	in, err := loadInputs(ctx, p.store, userID)
	if err != nil {
		return false, false, err
	}

	if in.Account.BalanceAsOfDate.Before(today) {
		in, err = p.roll(ctx, in, today)
		if err != nil {
			return false, false, err
		}
		rolled = true
	}

	if p.opts.Notifier != nil {
		alerted, err = p.checkLowBalance(ctx, userID, in, today)
		if err != nil {
			// the rollover itself already succeeded
			slog.WarnContext(ctx, "Low balance check failed", "user_id", userID, "error", err)
		}
	}
	return rolled, alerted, nil
}

// roll settles through yesterday and persists the new anchor together with
// the changed bill payments. The write is conditional on the account still
// matching what was read, so an edit made during the pass is never replaced.
func (p *RolloverProcessor) roll(ctx context.Context, in projection.Inputs, today core.Date) (projection.Inputs, error) {
	userID := in.Account.UserID
	settled := projection.Settle(in, today.AddDays(-1))

	paid := make(map[int64]decimal.Decimal)
	for _, b := range in.Bills {
		if v, ok := settled.AmountPaid[b.ID]; ok && !v.Equal(b.AmountPaid) {
			paid[b.ID] = v
		}
	}

	prev := in.Account
	next := prev
	next.StartingBalance = settled.Balance
	next.CurrentBalance = settled.Balance
	next.BalanceAsOfDate = today
	if err := p.store.RollAccount(ctx, prev, next, paid); err != nil {
		return in, fmt.Errorf("roll account: %w", err)
	}

	in.Account = next
	for i, b := range in.Bills {
		if v, ok := paid[b.ID]; ok {
			in.Bills[i].AmountPaid = v
		}
	}

	slog.InfoContext(ctx, "Rolled account anchor",
		"user_id", userID,
		"from", prev.BalanceAsOfDate.String(),
		"to", today.String(),
		"bills_updated", len(paid),
		"balance", core.FormatAmount(settled.Balance))
	return in, nil
}

// checkLowBalance alerts on the first day within the horizon whose projected
// balance is below the threshold.
func (p *RolloverProcessor) checkLowBalance(ctx context.Context, userID int64, in projection.Inputs, today core.Date) (bool, error) {
	r := projection.Range{Start: today, End: today.AddDays(p.opts.HorizonDays)}
	for day := range projection.Days(in, r) {
		if day.Placeholder(in.Account) || !day.RunningBalance.LessThan(p.opts.Threshold) {
			continue
		}
		err := p.opts.Notifier.NotifyLowBalance(ctx, notify.LowBalanceAlert{
			UserID:    userID,
			Date:      day.Date,
			Balance:   day.RunningBalance,
			Threshold: p.opts.Threshold,
		})
		if err != nil {
			return false, err
		}
		metrics.LowBalanceAlerts.Inc()
		return true, nil
	}
	return false, nil
}
