package handlers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"comanda-system/internal/database/models"
	"comanda-system/internal/pricing"
)

func TestPromotionRulePercentage(t *testing.T) {
	p := models.Promotion{
		Name:          "Taco Tuesday",
		Type:          PromotionTypePercentage,
		AppliesTo:     AppliesToCategory,
		TargetID:      7,
		DiscountValue: "15",
		IsActive:      true,
	}

	rule := promotionRule(p)
	if rule == nil {
		t.Fatal("expected a rule, got nil")
	}

	pct, ok := rule.(pricing.Percentage)
	if !ok {
		t.Fatalf("expected Percentage, got %T", rule)
	}
	if pct.Target.Kind != pricing.TargetCategory {
		t.Errorf("expected category target, got %v", pct.Target.Kind)
	}
	if pct.Target.ID != "7" {
		t.Errorf("expected target id %q, got %q", "7", pct.Target.ID)
	}
	if !pct.Percent.Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected percent 15, got %s", pct.Percent)
	}
	if rule.Name() != "Taco Tuesday" {
		t.Errorf("expected name %q, got %q", "Taco Tuesday", rule.Name())
	}
}

func TestPromotionRuleMalformedValueBecomesZero(t *testing.T) {
	p := models.Promotion{
		Name:          "Broken",
		Type:          PromotionTypeFixed,
		AppliesTo:     AppliesToProduct,
		TargetID:      3,
		DiscountValue: "not-a-number",
		IsActive:      true,
	}

	rule := promotionRule(p)
	fixed, ok := rule.(pricing.FixedAmount)
	if !ok {
		t.Fatalf("expected FixedAmount, got %T", rule)
	}
	if !fixed.Amount.IsZero() {
		t.Errorf("expected zero amount, got %s", fixed.Amount)
	}
}

func TestPromotionRuleQuantityDefaultsRequired(t *testing.T) {
	p := models.Promotion{
		Name:             "Bundle",
		Type:             PromotionTypeQuantity,
		AppliesTo:        AppliesToProduct,
		TargetID:         9,
		DiscountValue:    "10",
		RequiredQuantity: 0,
		IsActive:         true,
	}

	rule := promotionRule(p)
	qty, ok := rule.(pricing.QuantityBonus)
	if !ok {
		t.Fatalf("expected QuantityBonus, got %T", rule)
	}
	if qty.RequiredQuantity != 2 {
		t.Errorf("expected required quantity 2, got %d", qty.RequiredQuantity)
	}
	if qty.ProductID != "9" {
		t.Errorf("expected product id %q, got %q", "9", qty.ProductID)
	}
}

func TestPromotionRuleUnknownTypeIsNil(t *testing.T) {
	p := models.Promotion{
		Name:          "Mystery",
		Type:          "raffle",
		DiscountValue: "5",
	}
	if rule := promotionRule(p); rule != nil {
		t.Errorf("expected nil rule for unknown type, got %T", rule)
	}
}

func TestPromotionRulesSkipsUnknownTypes(t *testing.T) {
	now := time.Now()
	promotions := []models.Promotion{
		{Name: "Valid", Type: PromotionTypeBogo, AppliesTo: AppliesToProduct, TargetID: 1, IsActive: true, StartDate: &now},
		{Name: "Invalid", Type: "raffle"},
	}

	rules := promotionRules(promotions)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Name() != "Valid" {
		t.Errorf("expected rule %q, got %q", "Valid", rules[0].Name())
	}
}

func TestPromotionRuleCarriesWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.Local)
	p := models.Promotion{
		Name:          "March Madness",
		Type:          PromotionTypePercentage,
		AppliesTo:     AppliesToProduct,
		TargetID:      2,
		DiscountValue: "20",
		IsActive:      true,
		StartDate:     &start,
		EndDate:       &end,
	}

	window := promotionRule(p).ActiveWindow()
	if !window.Contains(time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)) {
		t.Error("expected window to contain a mid-March instant")
	}
	if window.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)) {
		t.Error("expected window to exclude April")
	}
}
