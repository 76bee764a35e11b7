package services

import (
	"encoding/json"
	"testing"
	"time"

	"pulse-markets/internal/models"
)

func TestTransformMarketCoercesMixedTypes(t *testing.T) {
	raw := map[string]interface{}{
		"id":         json.Number("7"),
		"creator":    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"question":   "BTC to 100k",
		"optionA":    "Yes",
		"option_b":   "No",
		"category":   "crypto",
		"status":     "active",
		"shares_a":   "120.5",
		"sharesB":    float64(30),
		"total_pool": map[string]interface{}{"value": "200"},
		"min_bet":    1,
		"end_time":   "1767225600",
		"created_at": float64(1735689600),
	}

	market := TransformMarket(raw)

	if market.ID != 7 {
		t.Errorf("expected id 7, got %d", market.ID)
	}
	if market.Title != "BTC to 100k" {
		t.Errorf("expected title from question key, got %q", market.Title)
	}
	if market.OptionA != "Yes" || market.OptionB != "No" {
		t.Errorf("option labels not coerced: %q / %q", market.OptionA, market.OptionB)
	}
	if market.Category != models.CategoryCrypto {
		t.Errorf("expected Crypto category, got %s", market.Category)
	}
	if !market.SharesA.Equal(decimalFromString(t, "120.5")) {
		t.Errorf("expected shares_a 120.5, got %s", market.SharesA)
	}
	if !market.TotalPool.Equal(decimalFromString(t, "200")) {
		t.Errorf("expected wrapped pool value 200, got %s", market.TotalPool)
	}
	if market.EndTime != time.Unix(1767225600, 0).UTC() {
		t.Errorf("end time not parsed from numeric string: %v", market.EndTime)
	}
	if market.CreatedAt != time.Unix(1735689600, 0).UTC() {
		t.Errorf("created at not parsed from float seconds: %v", market.CreatedAt)
	}
}

func TestTransformMarketDefaultsNeverPanic(t *testing.T) {
	market := TransformMarket(map[string]interface{}{
		"id":         "not-a-number",
		"total_pool": []interface{}{"garbage"},
		"resolved":   "maybe",
		"end_time":   "soon",
	})

	if market.ID != 0 {
		t.Errorf("unparseable id should default to 0, got %d", market.ID)
	}
	if !market.TotalPool.IsZero() {
		t.Errorf("unparseable pool should default to 0, got %s", market.TotalPool)
	}
	if market.Title != "" {
		t.Errorf("missing title should default to empty, got %q", market.Title)
	}
	if market.Resolved {
		t.Error("unparseable resolved flag should default to false")
	}
	if market.Outcome != models.OutcomeUnresolved {
		t.Errorf("missing outcome should default to unresolved, got %s", market.Outcome)
	}
	if !market.EndTime.IsZero() {
		t.Errorf("unparseable end time should default to zero, got %v", market.EndTime)
	}
}

func TestTransformMarketResolvedInvariant(t *testing.T) {
	// Raw flag says resolved but no outcome was recorded — fail closed
	market := TransformMarket(map[string]interface{}{
		"id":       float64(1),
		"status":   "resolved",
		"resolved": true,
	})
	if market.Resolved {
		t.Error("resolved without an outcome must coerce to unresolved")
	}

	// Raw flag says resolved but status is still active
	market = TransformMarket(map[string]interface{}{
		"id":       float64(2),
		"status":   "active",
		"outcome":  "option_a",
		"resolved": true,
	})
	if market.Resolved {
		t.Error("resolved with a non-terminal status must coerce to unresolved")
	}

	// Fully consistent resolution passes through
	market = TransformMarket(map[string]interface{}{
		"id":       float64(3),
		"status":   "resolved",
		"outcome":  "option_b",
		"resolved": true,
	})
	if !market.Resolved {
		t.Error("consistent resolution should stay resolved")
	}
	if market.Outcome != models.OutcomeOptionB {
		t.Errorf("expected option_b outcome, got %s", market.Outcome)
	}
}

func TestTransformPosition(t *testing.T) {
	position := TransformPosition(map[string]interface{}{
		"market_id": "12",
		"owner":     "wallet-1",
		"shares_a":  "10",
		"invested":  map[string]interface{}{"amount": "25.5"},
		"claimed":   "true",
	})

	if position.MarketID != 12 {
		t.Errorf("expected market id 12, got %d", position.MarketID)
	}
	if position.User != "wallet-1" {
		t.Errorf("expected user from owner key, got %q", position.User)
	}
	if !position.Invested.Equal(decimalFromString(t, "25.5")) {
		t.Errorf("expected invested 25.5, got %s", position.Invested)
	}
	if !position.Claimed {
		t.Error("claimed string flag should coerce to true")
	}
}
