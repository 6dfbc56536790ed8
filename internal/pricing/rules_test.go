package pricing

import (
	"testing"
	"time"
)

func TestWindowContains_DayInclusiveBounds(t *testing.T) {
	// A window whose start and end both fall on the evaluation day must be
	// open at any time of that day.
	day := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local)

	cases := []struct {
		name   string
		window Window
		now    time.Time
		want   bool
	}{
		{"inactive", Window{Active: false}, day, false},
		{"no bounds", Window{Active: true}, day, true},
		{"starts today, evaluated late evening", Window{Active: true, Start: timePtr(day)}, day.Add(13 * time.Hour), true},
		{"ends today, evaluated late evening", Window{Active: true, End: timePtr(day)}, day.Add(13 * time.Hour), true},
		{"starts tomorrow", Window{Active: true, Start: timePtr(day.AddDate(0, 0, 1))}, day, false},
		{"ended yesterday", Window{Active: true, End: timePtr(day.AddDate(0, 0, -1))}, day, false},
		{"start only, long since started", Window{Active: true, Start: timePtr(day.AddDate(-1, 0, 0))}, day, true},
		{"end only, far future end", Window{Active: true, End: timePtr(day.AddDate(1, 0, 0))}, day, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.window.Contains(tc.now); got != tc.want {
				t.Errorf("Contains(%s) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestEligibleRules_FiltersByWindow(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local)

	rules := []Rule{
		Percentage{PromoName: "open", Window: Window{Active: true}},
		Percentage{PromoName: "closed", Window: Window{Active: false}},
		BuyOneGetOne{PromoName: "expired", Window: Window{Active: true, End: timePtr(now.AddDate(0, 0, -2))}},
	}

	eligible := EligibleRules(rules, now)
	if len(eligible) != 1 {
		t.Fatalf("got %d eligible rules, want 1", len(eligible))
	}
	if eligible[0].Name() != "open" {
		t.Errorf("eligible rule = %q, want %q", eligible[0].Name(), "open")
	}
}

func TestQuantityBonus_ChecksSingleProductGroup(t *testing.T) {
	// Two different products of the same category must not pool toward the
	// threshold; only the targeted product's own grouped quantity counts.
	var all []LineItemInstance
	all = append(all, instances("p1", "c1", "20", 2)...)
	all = append(all, instances("p2", "c1", "20", 3)...)
	groups := GroupItems(all)

	bonus := QuantityBonus{PromoName: "Bulk", Window: alwaysOn(), ProductID: "p1", RequiredQuantity: 4, Bonus: dec("15")}
	if d := bonus.Discount(groups); !d.IsZero() {
		t.Errorf("discount = %s, want 0", d)
	}
}
