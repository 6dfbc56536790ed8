package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the engine's sole output. Discounts from every eligible rule
// stack additively and the result is never clamped against the subtotal, so
// a pathological promotion set can drive FinalTotal negative.
type Totals struct {
	Subtotal             decimal.Decimal
	Discount             decimal.Decimal
	ShippingCost         decimal.Decimal
	FinalTotal           decimal.Decimal
	AppliedPromotionName string
}

// ComputeTotals prices an order: subtotal over all grouped items, the summed
// discount of every rule eligible at now, the externally supplied flat
// shipping cost, and the resulting final total. It is a pure function of its
// arguments; identical inputs always produce identical output.
func ComputeTotals(groups []GroupedLineItem, rules []Rule, shippingCost decimal.Decimal, now time.Time) Totals {
	if len(groups) == 0 {
		return Totals{
			Subtotal:     decimal.Zero,
			Discount:     decimal.Zero,
			ShippingCost: decimal.Zero,
			FinalTotal:   decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	for _, g := range groups {
		subtotal = subtotal.Add(g.UnitPrice.Mul(decimal.NewFromInt(int64(g.Quantity))))
	}

	discount := decimal.Zero
	var applied []string
	seen := make(map[string]bool)
	for _, r := range EligibleRules(rules, now) {
		d := r.Discount(groups)
		if !d.IsPositive() {
			continue
		}
		discount = discount.Add(d)
		if !seen[r.Name()] {
			seen[r.Name()] = true
			applied = append(applied, r.Name())
		}
	}

	return Totals{
		Subtotal:             subtotal,
		Discount:             discount,
		ShippingCost:         shippingCost,
		FinalTotal:           subtotal.Sub(discount).Add(shippingCost),
		AppliedPromotionName: strings.Join(applied, ", "),
	}
}
