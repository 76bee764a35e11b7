package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketCategory string

const (
	CategoryPolitics MarketCategory = "Politics"
	CategorySports   MarketCategory = "Sports"
	CategoryCrypto   MarketCategory = "Crypto"
	CategoryTech     MarketCategory = "Tech"
	CategoryOther    MarketCategory = "Other"
)

type MarketStatus string

const (
	MarketStatusActive    MarketStatus = "active"
	MarketStatusClosed    MarketStatus = "closed"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

type MarketOutcome string

const (
	OutcomeUnresolved MarketOutcome = "unresolved"
	OutcomeOptionA    MarketOutcome = "option_a"
	OutcomeOptionB    MarketOutcome = "option_b"
	OutcomeCancelled  MarketOutcome = "cancelled"
)

// Market is the canonical form of an on-chain prediction market account.
// The chain owns this data; the backend only queries and caches it, so the
// struct carries no gorm tags and is never written to the database.
type Market struct {
	ID          uint64          `json:"id"`
	Creator     string          `json:"creator"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	OptionA     string          `json:"option_a"`
	OptionB     string          `json:"option_b"`
	Category    MarketCategory  `json:"category"`
	Status      MarketStatus    `json:"status"`
	Outcome     MarketOutcome   `json:"outcome"`
	SharesA     decimal.Decimal `json:"shares_a"`
	SharesB     decimal.Decimal `json:"shares_b"`
	TotalPool   decimal.Decimal `json:"total_pool"`
	MinBet      decimal.Decimal `json:"min_bet"`
	MaxBet      decimal.Decimal `json:"max_bet"`
	CreatedAt   time.Time       `json:"created_at"`
	EndTime     time.Time       `json:"end_time"`
	Resolved    bool            `json:"resolved"`
}

// Position is a user's share holding in a single market, read from the chain.
type Position struct {
	MarketID uint64          `json:"market_id"`
	User     string          `json:"user"`
	SharesA  decimal.Decimal `json:"shares_a"`
	SharesB  decimal.Decimal `json:"shares_b"`
	Invested decimal.Decimal `json:"invested"`
	Claimed  bool            `json:"claimed"`
}
