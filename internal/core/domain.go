package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// Account is the per-user balance anchor. CurrentBalance is informational;
	// projections always seed from StartingBalance.
	Account struct {
		UserID          int64           `json:"-"`
		StartingBalance decimal.Decimal `json:"startingBalance"`
		CurrentBalance  decimal.Decimal `json:"currentBalance"`
		BalanceAsOfDate Date            `json:"balanceAsOfDate"`
	}

	RecurringBill struct {
		ID         int64            `json:"id"`
		Name       string           `json:"name"`
		Amount     decimal.Decimal  `json:"amount"`
		DueDay     int              `json:"dueDay"`          // 1-31, clamped to the month length
		Total      *decimal.Decimal `json:"total,omitempty"` // set for payoff-tracked debts
		AmountPaid decimal.Decimal  `json:"amountPaid"`
		Category   string           `json:"category"`
	}

	Paycheck struct {
		ID               int64           `json:"id"`
		Amount           decimal.Decimal `json:"amount"`
		Date             Date            `json:"date"` // anchor
		Frequency        Frequency       `json:"frequency"`
		DayOfWeek        *int            `json:"dayOfWeek,omitempty"`        // 0=Monday
		DayOfMonth       int             `json:"dayOfMonth,omitempty"`       // 0 = unset
		SecondDayOfMonth int             `json:"secondDayOfMonth,omitempty"` // 0 = unset, bimonthly only
		Category         string          `json:"category"`
	}

	Expense struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		Amount        decimal.Decimal `json:"amount"`
		Date          Date            `json:"date"`
		Category      string          `json:"category"`
		RelatedBillID *int64          `json:"relatedBillId,omitempty"`
	}
)

const DefaultCategory = "Other"

var (
	ErrNotFound         = errors.New("not found")
	ErrAccountNotFound  = errors.New("finance account not found")
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidDueDay    = errors.New("due day must be between 1 and 31")
	ErrInvalidWeekday   = errors.New("day of week must be between 0 and 6")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long (max 200 characters)")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonths    = errors.New("months count must be positive")

	// ErrConflict means a conditional write found the record changed since it
	// was read.
	ErrConflict = errors.New("record changed concurrently")
)

var validationErrors = []error{
	ErrInvalidDay, ErrInvalidDueDay, ErrInvalidWeekday, ErrInvalidAmount,
	ErrInvalidFrequency, ErrEmptyName, ErrNameTooLong, ErrInvalidDate, ErrInvalidMonths,
	ErrInvalidCategoryType, ErrInvalidColor, ErrCategoryNameTooLong,
}

// IsValidation reports whether err stems from rejected user input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day. Out of range values
// normalise the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) Day() int {
	return d.Time.Day()
}

func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole days from other to d (negative when d is earlier).
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

// DaysInMonth returns the number of days in d's month, leap years included.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

func (d Date) LastOfMonth() Date {
	return NewDate(d.Year(), d.Month(), d.DaysInMonth())
}

// WeekdayIndex returns the weekday with Monday=0 and Sunday=6.
func (d Date) WeekdayIndex() int {
	return (int(d.Weekday()) + 6) % 7
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	return d.UnmarshalText([]byte(s))
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (b RecurringBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return ErrNameTooLong
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if b.Total != nil && b.Total.IsNegative() {
		return ErrInvalidAmount
	}
	if b.AmountPaid.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Tracked reports whether the bill is a payoff-tracked debt.
func (b RecurringBill) Tracked() bool {
	return b.Total != nil
}

func (p Paycheck) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Frequency == FrequencyUnknown {
		return ErrInvalidFrequency
	}
	if p.DayOfWeek != nil && (*p.DayOfWeek < 0 || *p.DayOfWeek > 6) {
		return ErrInvalidWeekday
	}
	if p.DayOfMonth < 0 || p.DayOfMonth > 31 || p.SecondDayOfMonth < 0 || p.SecondDayOfMonth > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return ErrNameTooLong
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
