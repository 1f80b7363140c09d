// Package core provides money handling utilities.
//
// Amounts are shopspring decimals end to end; nothing in the projection path
// converts through float64.
package core

import (
	"github.com/shopspring/decimal"
)

// FormatAmount renders d with exactly two decimals, rounding half to even.
func FormatAmount(d decimal.Decimal) string {
	return d.RoundBank(2).StringFixed(2)
}

// SumAmounts adds a list of amounts.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
