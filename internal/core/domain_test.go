package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	tests := []struct {
		name string
		d    Date
		days int
		wd   int
	}{
		{"january", NewDate(2025, 1, 15), 31, 2},       // Wednesday
		{"february leap", NewDate(2024, 2, 10), 29, 5}, // Saturday
		{"february", NewDate(2025, 2, 3), 28, 0},       // Monday
		{"april", NewDate(2025, 4, 6), 30, 6},          // Sunday
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.DaysInMonth(); got != tt.days {
				t.Errorf("DaysInMonth() = %d, want %d", got, tt.days)
			}
			if got := tt.d.WeekdayIndex(); got != tt.wd {
				t.Errorf("WeekdayIndex() = %d, want %d", got, tt.wd)
			}
			if got := tt.d.LastOfMonth().Day(); got != tt.days {
				t.Errorf("LastOfMonth().Day() = %d, want %d", got, tt.days)
			}
		})
	}
}

func TestDateDaysSince(t *testing.T) {
	a := NewDate(2024, 2, 27)
	b := NewDate(2024, 3, 2)
	if got := b.DaysSince(a); got != 4 {
		t.Fatalf("DaysSince = %d, want 4", got)
	}
	if got := a.DaysSince(b); got != -4 {
		t.Fatalf("DaysSince = %d, want -4", got)
	}
	if got := a.AddDays(4); !got.Equal(b) {
		t.Fatalf("AddDays = %s, want %s", got, b)
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		When Date `json:"when"`
	}
	raw, err := json.Marshal(payload{When: NewDate(2025, 3, 9)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"when":"2025-03-09"}` {
		t.Fatalf("unexpected json %s", raw)
	}
	var back payload
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.When.Equal(NewDate(2025, 3, 9)) {
		t.Fatalf("round trip got %s", back.When)
	}
	if err := json.Unmarshal([]byte(`{"when":"03/09/2025"}`), &back); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want Frequency
	}{
		{"once", FrequencyOnce},
		{"Weekly", FrequencyWeekly},
		{" biweekly ", FrequencyBiweekly},
		{"BIMONTHLY", FrequencyBimonthly},
		{"monthly", FrequencyMonthly},
		{"quarterly", FrequencyUnknown},
		{"", FrequencyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFrequency(tt.in); got != tt.want {
				t.Errorf("ParseFrequency(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecurringBillValidate(t *testing.T) {
	total := decimal.NewFromInt(100)
	neg := decimal.NewFromInt(-1)
	good := RecurringBill{Name: "Rent", Amount: decimal.NewFromInt(1200), DueDay: 1, Total: &total}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []RecurringBill{
		{Name: "", Amount: decimal.NewFromInt(1), DueDay: 1},
		{Name: "a", Amount: decimal.Zero, DueDay: 1},
		{Name: "a", Amount: decimal.NewFromInt(1), DueDay: 0},
		{Name: "a", Amount: decimal.NewFromInt(1), DueDay: 32},
		{Name: "a", Amount: decimal.NewFromInt(1), DueDay: 5, Total: &neg},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPaycheckValidate(t *testing.T) {
	dow := 7
	good := Paycheck{Amount: decimal.NewFromInt(1000), Date: NewDate(2025, 1, 3), Frequency: FrequencyBiweekly}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Paycheck{
		{Amount: decimal.NewFromInt(1), Frequency: FrequencyOnce},
		{Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1), Frequency: FrequencyUnknown},
		{Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1), Frequency: FrequencyWeekly, DayOfWeek: &dow},
		{Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1), Frequency: FrequencyMonthly, DayOfMonth: 40},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Name: "ok", Amount: decimal.NewFromInt(5), Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Expense{
		{Name: "a", Amount: decimal.NewFromInt(1)},
		{Name: "", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
		{Name: "a", Amount: decimal.Zero, Date: NewDate(2025, 1, 1)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIsValidation(t *testing.T) {
	long := RecurringBill{Name: strings.Repeat("x", 201), Amount: decimal.NewFromInt(1), DueDay: 1}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"zero date", Date{}.Validate(), true},
		{"name too long", long.Validate(), true},
		{"wrapped", fmt.Errorf("create bill: %w", ErrInvalidDueDay), true},
		{"not found", ErrNotFound, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
