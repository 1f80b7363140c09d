package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":       "0.00",
		"12.5":    "12.50",
		"-50":     "-50.00",
		"1.005":   "1.00",
		"0.125":   "0.12",
		"0.135":   "0.14",
		"-2.345":  "-2.34",
		"1000.25": "1000.25",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestSumAmounts(t *testing.T) {
	if got := SumAmounts(); !got.IsZero() {
		t.Fatalf("empty sum = %s", got)
	}
	got := SumAmounts(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2"), decimal.RequireFromString("-0.05"))
	if !got.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("sum = %s, want 0.25", got)
	}
}
