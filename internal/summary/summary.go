package summary

import (
	"math"

	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/shopspring/decimal"
)

// Placeholder is shown instead of a percentage that has no finite value.
const Placeholder = "—"

func TotalExpenses(l ledger.Ledger) float64 {
	var total float64
	for _, e := range l.Expenses {
		total += e.Value
	}
	return total
}

// Savings may be negative when expenses exceed income.
func Savings(l ledger.Ledger) float64 {
	return l.Income - TotalExpenses(l)
}

// SavingsRate is NaN or ±Inf when income is zero.
func SavingsRate(l ledger.Ledger) float64 {
	return Savings(l) / l.Income * 100
}

// Share is NaN or +Inf when total is zero.
func Share(value, total float64) float64 {
	return value / total * 100
}

type EntryShare struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Value   float64  `json:"value"`
	Color   string   `json:"color"`
	Percent *float64 `json:"percent"`
	Label   string   `json:"label"`
}

// Summary is the serializable view of the derived metrics. Non-finite
// percentages are encoded as null with a placeholder label.
type Summary struct {
	Income           float64      `json:"income"`
	TotalExpenses    float64      `json:"totalExpenses"`
	Savings          float64      `json:"savings"`
	SavingsRate      *float64     `json:"savingsRate"`
	SavingsRateLabel string       `json:"savingsRateLabel"`
	Shares           []EntryShare `json:"shares"`
	IsDemo           bool         `json:"isDemo"`
}

// Compute derives every metric from l. Nothing is cached between calls.
func Compute(l ledger.Ledger) Summary {
	total := TotalExpenses(l)
	rate := SavingsRate(l)

	shares := make([]EntryShare, len(l.Expenses))
	for i, e := range l.Expenses {
		pct := Share(e.Value, total)
		shares[i] = EntryShare{
			ID:      e.ID,
			Name:    e.Name,
			Value:   e.Value,
			Color:   e.Color,
			Percent: finite(pct),
			Label:   FormatPercent(pct),
		}
	}

	return Summary{
		Income:           l.Income,
		TotalExpenses:    total,
		Savings:          l.Income - total,
		SavingsRate:      finite(rate),
		SavingsRateLabel: FormatPercent(rate),
		Shares:           shares,
		IsDemo:           l.IsDemo,
	}
}

// FormatPercent renders one decimal place, or the placeholder for NaN/Inf.
func FormatPercent(pct float64) string {
	if !isFinite(pct) {
		return Placeholder
	}
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

// FormatAmount renders two decimal places.
func FormatAmount(v float64) string {
	if !isFinite(v) {
		return Placeholder
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func finite(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
