// Package notify sends account alerts by email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"

	"fintrack/internal/core"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
)

// LowBalanceAlert reports the first projected day a balance drops below the
// configured threshold.
type LowBalanceAlert struct {
	UserID    int64
	Date      core.Date
	Balance   decimal.Decimal
	Threshold decimal.Decimal
}

// Notifier delivers alerts.
type Notifier interface {
	NotifyLowBalance(ctx context.Context, a LowBalanceAlert) error
}

// SMTPConfig holds the mail server and addresses used for alerts.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

// EmailNotifier sends alerts through SMTP with PLAIN auth.
type EmailNotifier struct {
	cfg  SMTPConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

var _ Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:  cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// NotifyLowBalance implements Notifier.
func (n *EmailNotifier) NotifyLowBalance(ctx context.Context, a LowBalanceAlert) error {
	e := email.NewEmail()
	e.From = n.cfg.Sender
	e.To = []string{n.cfg.Recipient}
	e.Subject = fmt.Sprintf("Low balance projected on %s", a.Date)
	e.Text = []byte(lowBalanceBody(a))

	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(e, addr, auth); err != nil {
		return fmt.Errorf("send low balance alert: %w", err)
	}

	slog.InfoContext(ctx, "Low balance alert sent",
		"component", "notify",
		"user_id", a.UserID,
		"date", a.Date.String(),
		"balance", core.FormatAmount(a.Balance))
	return nil
}

func lowBalanceBody(a LowBalanceAlert) string {
	return fmt.Sprintf(
		"Your projected balance drops to $%s on %s (%s), below your alert threshold of $%s.\n\n"+
			"Review upcoming bills and expenses to avoid an overdraft.\n",
		core.FormatAmount(a.Balance), a.Date, a.Date.Format("Monday"), core.FormatAmount(a.Threshold))
}

// Nop discards every alert.
type Nop struct{}

func (Nop) NotifyLowBalance(context.Context, LowBalanceAlert) error { return nil }
