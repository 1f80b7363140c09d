package core

import "github.com/shopspring/decimal"

// MonthlySummary is the folded view of one calendar month of a projection.
type MonthlySummary struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"` // 1-12
	Label      string          `json:"label"` // "January 2025"
	Income     decimal.Decimal `json:"income"`
	Bills      decimal.Decimal `json:"bills"`
	Expenses   decimal.Decimal `json:"expenses"`
	Net        decimal.Decimal `json:"net"`
	EndBalance decimal.Decimal `json:"endBalance"`
}

// BalanceProjection carries the balance extremes of one month.
type BalanceProjection struct {
	Month      string          `json:"month"` // "2025-01"
	MinBalance decimal.Decimal `json:"minBalance"`
	MaxBalance decimal.Decimal `json:"maxBalance"`
	EndBalance decimal.Decimal `json:"endBalance"`
}
