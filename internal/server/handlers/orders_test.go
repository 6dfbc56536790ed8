package handlers

import (
	"testing"

	"github.com/shopspring/decimal"

	"comanda-system/internal/pricing"
)

func noteInstances(notes ...string) []pricing.LineItemInstance {
	instances := make([]pricing.LineItemInstance, len(notes))
	for i, note := range notes {
		instances[i] = pricing.LineItemInstance{
			InstanceID: string(rune('a' + i)),
			ProductID:  "1",
			UnitPrice:  decimal.NewFromInt(10),
			Note:       note,
		}
	}
	return instances
}

func TestRollupNotesCountsRepeats(t *testing.T) {
	got := rollupNotes(noteInstances("no onions", "extra cheese", "no onions"))
	want := "(x2) no onions; extra cheese"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRollupNotesSkipsEmpty(t *testing.T) {
	got := rollupNotes(noteInstances("", "well done", "  "))
	if got != "well done" {
		t.Errorf("expected %q, got %q", "well done", got)
	}
}

func TestRollupNotesAllEmpty(t *testing.T) {
	if got := rollupNotes(noteInstances("", "")); got != "" {
		t.Errorf("expected empty rollup, got %q", got)
	}
}

func TestParseShipping(t *testing.T) {
	if !parseShipping("").IsZero() {
		t.Error("expected empty shipping to be zero")
	}
	if !parseShipping("garbage").IsZero() {
		t.Error("expected malformed shipping to be zero")
	}
	if !parseShipping("35.50").Equal(decimal.NewFromFloat(35.50)) {
		t.Errorf("expected 35.50, got %s", parseShipping("35.50"))
	}
}

func TestValidTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPending, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusCompleted, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusPreparing, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range cases {
		allowed := false
		for _, next := range validTransitions[tc.from] {
			if next == tc.to {
				allowed = true
				break
			}
		}
		if allowed != tc.allowed {
			t.Errorf("transition %s -> %s: expected allowed=%v, got %v", tc.from, tc.to, tc.allowed, allowed)
		}
	}
}

func TestToTotalsResponseFormatsFixed(t *testing.T) {
	totals := pricing.Totals{
		Subtotal:             decimal.NewFromInt(200),
		Discount:             decimal.NewFromInt(30),
		ShippingCost:         decimal.NewFromFloat(35.5),
		FinalTotal:           decimal.NewFromFloat(205.5),
		AppliedPromotionName: "Ten Percent",
	}

	resp := toTotalsResponse(totals)
	if resp.Subtotal != "200.00" {
		t.Errorf("expected subtotal %q, got %q", "200.00", resp.Subtotal)
	}
	if resp.Discount != "30.00" {
		t.Errorf("expected discount %q, got %q", "30.00", resp.Discount)
	}
	if resp.ShippingCost != "35.50" {
		t.Errorf("expected shipping %q, got %q", "35.50", resp.ShippingCost)
	}
	if resp.FinalTotal != "205.50" {
		t.Errorf("expected final total %q, got %q", "205.50", resp.FinalTotal)
	}
	if resp.AppliedPromotionName != "Ten Percent" {
		t.Errorf("expected promotion name %q, got %q", "Ten Percent", resp.AppliedPromotionName)
	}
}
