package pricing

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func instances(productID, categoryID string, price string, qty int) []LineItemInstance {
	out := make([]LineItemInstance, 0, qty)
	for i := 0; i < qty; i++ {
		out = append(out, LineItemInstance{
			InstanceID: fmt.Sprintf("%s-%d", productID, i),
			ProductID:  productID,
			CategoryID: categoryID,
			UnitPrice:  decimal.RequireFromString(price),
		})
	}
	return out
}

func TestGroupItems_Empty(t *testing.T) {
	groups := GroupItems(nil)
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestGroupItems_QuantityInvariant(t *testing.T) {
	var all []LineItemInstance
	all = append(all, instances("p1", "c1", "100", 3)...)
	all = append(all, instances("p2", "c1", "50", 1)...)
	all = append(all, instances("p1", "c1", "100", 2)...)
	all = append(all, instances("p3", "c2", "25", 4)...)

	groups := GroupItems(all)

	total := 0
	for _, g := range groups {
		total += g.Quantity
		if len(g.Instances) != g.Quantity {
			t.Errorf("group %s: %d instances for quantity %d", g.ProductID, len(g.Instances), g.Quantity)
		}
	}
	if total != len(all) {
		t.Errorf("quantities sum to %d, want %d", total, len(all))
	}
}

func TestGroupItems_FirstSeenOrder(t *testing.T) {
	var all []LineItemInstance
	all = append(all, instances("burger", "food", "80", 1)...)
	all = append(all, instances("soda", "drinks", "25", 2)...)
	all = append(all, instances("burger", "food", "80", 1)...)
	all = append(all, instances("fries", "food", "40", 1)...)

	groups := GroupItems(all)

	want := []string{"burger", "soda", "fries"}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, id := range want {
		if groups[i].ProductID != id {
			t.Errorf("group %d is %s, want %s", i, groups[i].ProductID, id)
		}
	}
	if groups[0].Quantity != 2 {
		t.Errorf("burger quantity = %d, want 2", groups[0].Quantity)
	}
}

func TestGroupItems_KeepsInstanceNotes(t *testing.T) {
	all := []LineItemInstance{
		{InstanceID: "a", ProductID: "burger", UnitPrice: decimal.NewFromInt(80), Note: "no onions"},
		{InstanceID: "b", ProductID: "burger", UnitPrice: decimal.NewFromInt(80)},
	}

	groups := GroupItems(all)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Instances[0].Note != "no onions" {
		t.Errorf("first instance note = %q, want %q", groups[0].Instances[0].Note, "no onions")
	}
	if groups[0].Instances[1].Note != "" {
		t.Errorf("second instance note = %q, want empty", groups[0].Instances[1].Note)
	}
}

func TestGroupItems_Idempotent(t *testing.T) {
	var all []LineItemInstance
	all = append(all, instances("p1", "c1", "10", 2)...)
	all = append(all, instances("p2", "c2", "20", 3)...)

	first := GroupItems(all)
	second := GroupItems(all)

	if len(first) != len(second) {
		t.Fatalf("group counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ProductID != second[i].ProductID || first[i].Quantity != second[i].Quantity {
			t.Errorf("group %d differs between runs", i)
		}
	}
}
