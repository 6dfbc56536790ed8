package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// TargetKind selects how a rule matches order items.
type TargetKind int

const (
	TargetProduct TargetKind = iota
	TargetCategory
)

// Target identifies the items a rule applies to, either a single product or
// every product of a category.
type Target struct {
	Kind TargetKind
	ID   string
}

func (t Target) matches(g GroupedLineItem) bool {
	switch t.Kind {
	case TargetProduct:
		return t.ID == g.ProductID
	case TargetCategory:
		return t.ID == g.CategoryID
	}
	return false
}

func (t Target) filter(groups []GroupedLineItem) []GroupedLineItem {
	var out []GroupedLineItem
	for _, g := range groups {
		if t.matches(g) {
			out = append(out, g)
		}
	}
	return out
}

func totalQuantity(groups []GroupedLineItem) int64 {
	var qty int64
	for _, g := range groups {
		qty += int64(g.Quantity)
	}
	return qty
}

// Window is the activation state every rule carries: an on/off switch plus
// optional first and last calendar days. Both bounds cover their entire day
// regardless of the evaluation instant's time-of-day.
type Window struct {
	Active bool
	Start  *time.Time
	End    *time.Time
}

// Contains reports whether the rule may fire at the given instant. A window
// with a start but no end stays open indefinitely once started; one with
// only an end is open from the beginning of time.
func (w Window) Contains(now time.Time) bool {
	if !w.Active {
		return false
	}
	if w.Start != nil && now.Before(startOfDay(*w.Start)) {
		return false
	}
	if w.End != nil && now.After(endOfDay(*w.End)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Rule is one promotion. The four concrete kinds each carry only the fields
// their formula reads, so there is no "missing field defaults to zero"
// fallback inside the engine.
type Rule interface {
	Name() string
	ActiveWindow() Window
	// Discount returns the amount this rule takes off the given order.
	// A rule whose target matches nothing returns zero.
	Discount(groups []GroupedLineItem) decimal.Decimal
}

// EligibleRules filters down to the rules allowed to fire at the given
// instant.
func EligibleRules(rules []Rule, now time.Time) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.ActiveWindow().Contains(now) {
			out = append(out, r)
		}
	}
	return out
}

var oneHundred = decimal.NewFromInt(100)

// Percentage takes a percentage off every targeted unit.
type Percentage struct {
	PromoName string
	Window    Window
	Target    Target
	Percent   decimal.Decimal
}

func (p Percentage) Name() string         { return p.PromoName }
func (p Percentage) ActiveWindow() Window { return p.Window }

func (p Percentage) Discount(groups []GroupedLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, g := range p.Target.filter(groups) {
		line := g.UnitPrice.Mul(decimal.NewFromInt(int64(g.Quantity)))
		total = total.Add(line.Mul(p.Percent).Div(oneHundred))
	}
	return total
}

// FixedAmount takes a flat currency amount off every targeted unit, so the
// discount scales with the quantity bought.
type FixedAmount struct {
	PromoName string
	Window    Window
	Target    Target
	Amount    decimal.Decimal
}

func (f FixedAmount) Name() string         { return f.PromoName }
func (f FixedAmount) ActiveWindow() Window { return f.Window }

func (f FixedAmount) Discount(groups []GroupedLineItem) decimal.Decimal {
	qty := totalQuantity(f.Target.filter(groups))
	return f.Amount.Mul(decimal.NewFromInt(qty))
}

// BuyOneGetOne makes every second unit across the pooled target set free.
// The free units are priced at the first targeted item encountered in the
// order, not necessarily the cheapest one.
type BuyOneGetOne struct {
	PromoName string
	Window    Window
	Target    Target
}

func (b BuyOneGetOne) Name() string         { return b.PromoName }
func (b BuyOneGetOne) ActiveWindow() Window { return b.Window }

func (b BuyOneGetOne) Discount(groups []GroupedLineItem) decimal.Decimal {
	targets := b.Target.filter(groups)
	if len(targets) == 0 {
		return decimal.Zero
	}
	free := totalQuantity(targets) / 2
	return targets[0].UnitPrice.Mul(decimal.NewFromInt(free))
}

// QuantityBonus grants a one-time flat discount once a single product's
// grouped quantity reaches the threshold. It always targets one product, so
// it has no product/category selector.
type QuantityBonus struct {
	PromoName        string
	Window           Window
	ProductID        string
	RequiredQuantity int
	Bonus            decimal.Decimal
}

func (q QuantityBonus) Name() string         { return q.PromoName }
func (q QuantityBonus) ActiveWindow() Window { return q.Window }

func (q QuantityBonus) Discount(groups []GroupedLineItem) decimal.Decimal {
	for _, g := range groups {
		if g.ProductID == q.ProductID {
			if g.Quantity >= q.RequiredQuantity {
				return q.Bonus
			}
			return decimal.Zero
		}
	}
	return decimal.Zero
}
