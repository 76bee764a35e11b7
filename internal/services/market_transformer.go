package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"pulse-markets/internal/models"

	"github.com/shopspring/decimal"
)

// TransformMarket coerces a raw chain-query record into a canonical Market.
// The upstream program returns weakly-typed jsonParsed values whose shape
// varies slightly between query scripts (camelCase vs snake_case keys, numbers
// as strings, amounts wrapped in {"value": ...} envelopes), so every field is
// defensively coerced. This function never fails: unparseable numerics become
// zero, missing strings become empty, and an unknown outcome stays unresolved.
func TransformMarket(raw map[string]interface{}) models.Market {
	market := models.Market{
		ID:          coerceUint64(pick(raw, "id", "market_id", "marketId")),
		Creator:     coerceString(pick(raw, "creator", "authority", "owner")),
		Title:       coerceString(pick(raw, "title", "question")),
		Description: coerceString(pick(raw, "description", "details")),
		OptionA:     coerceString(pick(raw, "option_a", "optionA", "outcome_a")),
		OptionB:     coerceString(pick(raw, "option_b", "optionB", "outcome_b")),
		Category:    coerceCategory(pick(raw, "category")),
		Status:      coerceStatus(pick(raw, "status", "state")),
		Outcome:     coerceOutcome(pick(raw, "outcome", "resolution_outcome", "winningOption")),
		SharesA:     coerceDecimal(pick(raw, "shares_a", "sharesA", "total_shares_a")),
		SharesB:     coerceDecimal(pick(raw, "shares_b", "sharesB", "total_shares_b")),
		TotalPool:   coerceDecimal(pick(raw, "total_pool", "totalPool", "pool")),
		MinBet:      coerceDecimal(pick(raw, "min_bet", "minBet")),
		MaxBet:      coerceDecimal(pick(raw, "max_bet", "maxBet")),
		CreatedAt:   coerceTime(pick(raw, "created_at", "createdAt", "creation_time")),
		EndTime:     coerceTime(pick(raw, "end_time", "endTime", "ends_at")),
		Resolved:    coerceBool(pick(raw, "resolved", "is_resolved", "isResolved")),
	}

	// A market is only resolved when the chain also recorded a terminal
	// status and a concrete outcome; disagreeing raw flags fail closed.
	if market.Status != models.MarketStatusResolved || market.Outcome == models.OutcomeUnresolved {
		market.Resolved = false
	}

	return market
}

// TransformPosition coerces a raw position account record
func TransformPosition(raw map[string]interface{}) models.Position {
	return models.Position{
		MarketID: coerceUint64(pick(raw, "market_id", "marketId", "market")),
		User:     coerceString(pick(raw, "user", "owner", "wallet")),
		SharesA:  coerceDecimal(pick(raw, "shares_a", "sharesA")),
		SharesB:  coerceDecimal(pick(raw, "shares_b", "sharesB")),
		Invested: coerceDecimal(pick(raw, "invested", "total_invested", "amount")),
		Claimed:  coerceBool(pick(raw, "claimed", "is_claimed")),
	}
}

// pick returns the first present key from the candidates
func pick(raw map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			return value
		}
	}
	return nil
}

// unwrap unpacks {"value": ...} and {"amount": ...} envelopes the RPC layer
// produces for token amounts
func unwrap(value interface{}) interface{} {
	wrapped, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if inner, ok := wrapped["value"]; ok {
		return inner
	}
	if inner, ok := wrapped["amount"]; ok {
		return inner
	}
	return value
}

func coerceString(value interface{}) string {
	switch v := unwrap(value).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func coerceUint64(value interface{}) uint64 {
	switch v := unwrap(value).(type) {
	case uint64:
		return v
	case int64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case int:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case json.Number:
		parsed, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func coerceDecimal(value interface{}) decimal.Decimal {
	switch v := unwrap(value).(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}

func coerceBool(value interface{}) bool {
	switch v := unwrap(value).(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	case float64:
		return v != 0
	default:
		return false
	}
}

// coerceTime accepts unix seconds (number or numeric string) or RFC3339
func coerceTime(value interface{}) time.Time {
	switch v := unwrap(value).(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	case json.Number:
		seconds, err := v.Int64()
		if err != nil {
			return time.Time{}
		}
		return time.Unix(seconds, 0).UTC()
	case string:
		if seconds, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(seconds, 0).UTC()
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed.UTC()
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

func coerceCategory(value interface{}) models.MarketCategory {
	switch strings.ToLower(coerceString(value)) {
	case "politics":
		return models.CategoryPolitics
	case "sports":
		return models.CategorySports
	case "crypto":
		return models.CategoryCrypto
	case "tech", "technology":
		return models.CategoryTech
	default:
		return models.CategoryOther
	}
}

func coerceStatus(value interface{}) models.MarketStatus {
	switch strings.ToLower(coerceString(value)) {
	case "active", "open":
		return models.MarketStatusActive
	case "closed", "ended":
		return models.MarketStatusClosed
	case "resolved":
		return models.MarketStatusResolved
	case "cancelled", "canceled":
		return models.MarketStatusCancelled
	default:
		return models.MarketStatusActive
	}
}

func coerceOutcome(value interface{}) models.MarketOutcome {
	switch strings.ToLower(coerceString(value)) {
	case "option_a", "optiona", "a", "yes":
		return models.OutcomeOptionA
	case "option_b", "optionb", "b", "no":
		return models.OutcomeOptionB
	case "cancelled", "canceled":
		return models.OutcomeCancelled
	default:
		return models.OutcomeUnresolved
	}
}
