package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var evalTime = time.Date(2025, time.March, 15, 14, 30, 0, 0, time.Local)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func timePtr(t time.Time) *time.Time { return &t }

func alwaysOn() Window { return Window{Active: true} }

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestComputeTotals_NoItems(t *testing.T) {
	totals := ComputeTotals(nil, []Rule{
		Percentage{PromoName: "Anything", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Percent: dec("10")},
	}, dec("30"), evalTime)

	assertDecimal(t, "subtotal", totals.Subtotal, "0")
	assertDecimal(t, "discount", totals.Discount, "0")
	assertDecimal(t, "shipping", totals.ShippingCost, "0")
	assertDecimal(t, "final", totals.FinalTotal, "0")
}

func TestComputeTotals_SubtotalIgnoresPromotions(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))

	with := ComputeTotals(groups, []Rule{
		Percentage{PromoName: "Ten", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Percent: dec("10")},
	}, decimal.Zero, evalTime)
	without := ComputeTotals(groups, nil, decimal.Zero, evalTime)

	assertDecimal(t, "subtotal with promo", with.Subtotal, "200")
	assertDecimal(t, "subtotal without promo", without.Subtotal, "200")
}

func TestComputeTotals_PercentageDiscount(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))
	rules := []Rule{
		Percentage{PromoName: "Happy Hour", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Percent: dec("10")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)

	assertDecimal(t, "subtotal", totals.Subtotal, "200")
	assertDecimal(t, "discount", totals.Discount, "20")
	assertDecimal(t, "final", totals.FinalTotal, "180")
	if totals.AppliedPromotionName != "Happy Hour" {
		t.Errorf("applied name = %q, want %q", totals.AppliedPromotionName, "Happy Hour")
	}
}

func TestComputeTotals_FixedScalesWithQuantity(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))
	rules := []Rule{
		FixedAmount{PromoName: "5 Off", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Amount: dec("5")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount", totals.Discount, "10")
}

func TestComputeTotals_BogoHalvesPairedUnits(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "50", 3))
	rules := []Rule{
		BuyOneGetOne{PromoName: "2x1", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount", totals.Discount, "50")
}

func TestComputeTotals_BogoPoolsCategoryAtFirstItemPrice(t *testing.T) {
	// 2 units at 60 plus 1 at 20: three pooled units, one free at the price
	// of the first targeted item in the order.
	var all []LineItemInstance
	all = append(all, instances("p1", "drinks", "60", 2)...)
	all = append(all, instances("p2", "drinks", "20", 1)...)
	groups := GroupItems(all)

	rules := []Rule{
		BuyOneGetOne{PromoName: "Drinks 2x1", Window: alwaysOn(), Target: Target{TargetCategory, "drinks"}},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount", totals.Discount, "60")
}

func TestComputeTotals_QuantityBonus(t *testing.T) {
	rules := []Rule{
		QuantityBonus{PromoName: "Bulk", Window: alwaysOn(), ProductID: "p1", RequiredQuantity: 4, Bonus: dec("15")},
	}

	met := ComputeTotals(GroupItems(instances("p1", "c1", "20", 5)), rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount at qty 5", met.Discount, "15")

	unmet := ComputeTotals(GroupItems(instances("p1", "c1", "20", 3)), rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount at qty 3", unmet.Discount, "0")
}

func TestComputeTotals_StackingIsAdditive(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))
	rules := []Rule{
		Percentage{PromoName: "Ten Percent", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Percent: dec("10")},
		FixedAmount{PromoName: "Five Off", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Amount: dec("5")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)

	assertDecimal(t, "discount", totals.Discount, "30")
	if totals.AppliedPromotionName != "Ten Percent, Five Off" {
		t.Errorf("applied names = %q", totals.AppliedPromotionName)
	}
}

func TestComputeTotals_InactiveAndExpiredContributeNothing(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))
	yesterday := evalTime.AddDate(0, 0, -1)
	tomorrow := evalTime.AddDate(0, 0, 1)

	rules := []Rule{
		Percentage{PromoName: "Switched Off", Window: Window{Active: false}, Target: Target{TargetProduct, "p1"}, Percent: dec("50")},
		Percentage{PromoName: "Expired", Window: Window{Active: true, End: timePtr(yesterday)}, Target: Target{TargetProduct, "p1"}, Percent: dec("50")},
		Percentage{PromoName: "Not Yet", Window: Window{Active: true, Start: timePtr(tomorrow)}, Target: Target{TargetProduct, "p1"}, Percent: dec("50")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)

	assertDecimal(t, "discount", totals.Discount, "0")
	if totals.AppliedPromotionName != "" {
		t.Errorf("applied names = %q, want empty", totals.AppliedPromotionName)
	}
}

func TestComputeTotals_UnmatchedTargetContributesNothing(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 2))
	rules := []Rule{
		Percentage{PromoName: "Other Product", Window: alwaysOn(), Target: Target{TargetProduct, "p9"}, Percent: dec("10")},
		FixedAmount{PromoName: "Other Category", Window: alwaysOn(), Target: Target{TargetCategory, "c9"}, Amount: dec("5")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)
	assertDecimal(t, "discount", totals.Discount, "0")
}

func TestComputeTotals_ShippingAddedUnconditionally(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "100", 1))

	totals := ComputeTotals(groups, nil, dec("35"), evalTime)

	assertDecimal(t, "shipping", totals.ShippingCost, "35")
	assertDecimal(t, "final", totals.FinalTotal, "135")
}

func TestComputeTotals_FinalTotalNotFlooredAtZero(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "1", 10))
	rules := []Rule{
		FixedAmount{PromoName: "Too Generous", Window: alwaysOn(), Target: Target{TargetProduct, "p1"}, Amount: dec("5")},
	}

	totals := ComputeTotals(groups, rules, decimal.Zero, evalTime)

	assertDecimal(t, "discount", totals.Discount, "50")
	assertDecimal(t, "final", totals.FinalTotal, "-40")
}

func TestComputeTotals_Idempotent(t *testing.T) {
	groups := GroupItems(instances("p1", "c1", "33.33", 3))
	rules := []Rule{
		Percentage{PromoName: "Ten", Window: alwaysOn(), Target: Target{TargetCategory, "c1"}, Percent: dec("10")},
	}

	first := ComputeTotals(groups, rules, dec("12.50"), evalTime)
	second := ComputeTotals(groups, rules, dec("12.50"), evalTime)

	if !first.Subtotal.Equal(second.Subtotal) ||
		!first.Discount.Equal(second.Discount) ||
		!first.FinalTotal.Equal(second.FinalTotal) ||
		first.AppliedPromotionName != second.AppliedPromotionName {
		t.Errorf("repeated computation diverged: %+v vs %+v", first, second)
	}
}
