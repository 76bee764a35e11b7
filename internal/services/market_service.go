package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pulse-markets/internal/blockchain"
	"pulse-markets/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketService keeps an in-memory snapshot of the on-chain market list and
// serves filtered views of it. The snapshot is refreshed by the market
// refresh job and on demand; when a refresh fails the last good snapshot
// keeps serving so a flaky RPC node degrades reads instead of breaking them.
type MarketService struct {
	contract *blockchain.MarketContract
	points   *PointsService

	mu          sync.RWMutex
	markets     []models.Market
	lastRefresh time.Time
}

// NewMarketService creates a new MarketService
func NewMarketService(db *gorm.DB, contract *blockchain.MarketContract) *MarketService {
	return &MarketService{
		contract: contract,
		points:   NewPointsService(db),
	}
}

// Refresh re-fetches the full market list from the chain
func (s *MarketService) Refresh(ctx context.Context) error {
	records, err := s.contract.GetAllMarkets(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh markets: %w", err)
	}

	markets := make([]models.Market, 0, len(records))
	for _, record := range records {
		markets = append(markets, TransformMarket(record))
	}

	s.mu.Lock()
	s.markets = markets
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	log.Printf("Market snapshot refreshed: %d markets", len(markets))
	return nil
}

// ListMarkets runs the filter pipeline over the current snapshot
func (s *MarketService) ListMarkets(filter MarketFilter) []models.Market {
	s.mu.RLock()
	snapshot := make([]models.Market, len(s.markets))
	copy(snapshot, s.markets)
	s.mu.RUnlock()

	return FilterMarkets(snapshot, filter)
}

// GetMarket returns one market, preferring the snapshot and falling back to
// an on-demand chain query
func (s *MarketService) GetMarket(ctx context.Context, marketID uint64) (*models.Market, error) {
	s.mu.RLock()
	for _, market := range s.markets {
		if market.ID == marketID {
			found := market
			s.mu.RUnlock()
			return &found, nil
		}
	}
	s.mu.RUnlock()

	record, err := s.contract.GetMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}

	market := TransformMarket(record)
	return &market, nil
}

// GetUserPositions returns a user's share holdings across all markets
func (s *MarketService) GetUserPositions(ctx context.Context, address string) ([]models.Position, error) {
	records, err := s.contract.GetUserPositions(ctx, address)
	if err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(records))
	for _, record := range records {
		positions = append(positions, TransformPosition(record))
	}
	return positions, nil
}

// LastRefresh reports when the snapshot was last updated
func (s *MarketService) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// validateBet checks a bet against the market's state and limits
func (s *MarketService) validateBet(ctx context.Context, marketID uint64, amount decimal.Decimal) (*models.Market, error) {
	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("market not found: %w", err)
	}
	if market.Status != models.MarketStatusActive {
		return nil, fmt.Errorf("market %d is not open for betting", marketID)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("bet amount must be positive")
	}
	if market.MinBet.GreaterThan(decimal.Zero) && amount.LessThan(market.MinBet) {
		return nil, fmt.Errorf("bet is below the market minimum of %s", market.MinBet)
	}
	if market.MaxBet.GreaterThan(decimal.Zero) && amount.GreaterThan(market.MaxBet) {
		return nil, fmt.Errorf("bet is above the market maximum of %s", market.MaxBet)
	}
	return market, nil
}

// PlaceBet submits a wallet-signed buy_shares transaction, waits for sealing,
// then records the bet in the points ledger
func (s *MarketService) PlaceBet(ctx context.Context, address string, marketID uint64, amount decimal.Decimal, signedTx string) (string, error) {
	if _, err := s.validateBet(ctx, marketID, amount); err != nil {
		return "", err
	}

	signature, err := s.contract.SubmitSigned(ctx, signedTx)
	if err != nil {
		return "", err
	}

	if _, err := s.points.AwardPoints(ctx, address, models.ActivityPlaceBet, ActivityDetails{
		MarketID:  &marketID,
		BetAmount: amount,
		Extra:     map[string]interface{}{"tx": signature},
	}); err != nil {
		log.Printf("Warning: bet sealed but points award failed for %s: %v", address, err)
	}

	return signature, nil
}

// CreateMarket submits a wallet-signed create_market transaction and awards
// creation points once sealed
func (s *MarketService) CreateMarket(ctx context.Context, address, signedTx string) (string, error) {
	signature, err := s.contract.SubmitSigned(ctx, signedTx)
	if err != nil {
		return "", err
	}

	if _, err := s.points.AwardPoints(ctx, address, models.ActivityCreateMarket, ActivityDetails{
		Extra: map[string]interface{}{"tx": signature},
	}); err != nil {
		log.Printf("Warning: market created but points award failed for %s: %v", address, err)
	}

	if err := s.Refresh(ctx); err != nil {
		log.Printf("Warning: snapshot refresh after market creation failed: %v", err)
	}

	return signature, nil
}

// ResolveMarket submits a wallet-signed resolve_market transaction and awards
// resolution points once sealed
func (s *MarketService) ResolveMarket(ctx context.Context, address string, marketID uint64, signedTx string) (string, error) {
	signature, err := s.contract.SubmitSigned(ctx, signedTx)
	if err != nil {
		return "", err
	}

	if _, err := s.points.AwardPoints(ctx, address, models.ActivityMarketResolved, ActivityDetails{
		MarketID: &marketID,
		Extra:    map[string]interface{}{"tx": signature},
	}); err != nil {
		log.Printf("Warning: resolution sealed but points award failed for %s: %v", address, err)
	}

	if err := s.Refresh(ctx); err != nil {
		log.Printf("Warning: snapshot refresh after resolution failed: %v", err)
	}

	return signature, nil
}

// ClaimWinnings submits a wallet-signed claim_winnings transaction. A win is
// only recorded in the ledger after the claim seals.
func (s *MarketService) ClaimWinnings(ctx context.Context, address string, marketID uint64, winnings decimal.Decimal, signedTx string) (string, error) {
	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return "", fmt.Errorf("market not found: %w", err)
	}
	if !market.Resolved {
		return "", fmt.Errorf("market %d is not resolved yet", marketID)
	}

	signature, err := s.contract.SubmitSigned(ctx, signedTx)
	if err != nil {
		return "", err
	}

	if _, err := s.points.AwardPoints(ctx, address, models.ActivityWinBet, ActivityDetails{
		MarketID: &marketID,
		Winnings: winnings,
		Extra:    map[string]interface{}{"tx": signature},
	}); err != nil {
		log.Printf("Warning: claim sealed but points award failed for %s: %v", address, err)
	}

	return signature, nil
}

// InstructionRequest names the transaction a client wants parameters for.
// Fields beyond Action are read per action and ignored otherwise.
type InstructionRequest struct {
	Action      string
	MarketID    uint64
	Option      string
	Amount      decimal.Decimal
	Title       string
	OptionA     string
	OptionB     string
	EndTime     int64
	Outcome     string
	EvidenceURI string
}

// BuildInstruction returns the parameters a wallet needs to build and sign
// one of the market program's instructions. Inputs are validated here so the
// frontend never assembles a transaction the chain would reject outright.
func (s *MarketService) BuildInstruction(ctx context.Context, address string, req InstructionRequest) (map[string]interface{}, error) {
	switch req.Action {
	case "buy_shares":
		if req.Option != "a" && req.Option != "b" {
			return nil, fmt.Errorf("option must be \"a\" or \"b\"")
		}
		if _, err := s.validateBet(ctx, req.MarketID, req.Amount); err != nil {
			return nil, err
		}
		return s.contract.GetBuySharesInstruction(req.MarketID, address, req.Option, req.Amount), nil

	case "create_market":
		if req.Title == "" || req.OptionA == "" || req.OptionB == "" {
			return nil, fmt.Errorf("title and both option labels are required")
		}
		if req.EndTime <= time.Now().Unix() {
			return nil, fmt.Errorf("end time must be in the future")
		}
		return s.contract.GetCreateMarketInstruction(address, req.Title, req.OptionA, req.OptionB, req.EndTime), nil

	case "resolve_market":
		switch models.MarketOutcome(req.Outcome) {
		case models.OutcomeOptionA, models.OutcomeOptionB, models.OutcomeCancelled:
		default:
			return nil, fmt.Errorf("invalid resolution outcome: %s", req.Outcome)
		}
		return s.contract.GetResolveMarketInstruction(req.MarketID, address, req.Outcome), nil

	case "claim_winnings":
		return s.contract.GetClaimWinningsInstruction(req.MarketID, address), nil

	case "create_user_account":
		return s.contract.GetCreateUserAccountInstruction(address), nil

	case "submit_resolution_evidence":
		if req.EvidenceURI == "" {
			return nil, fmt.Errorf("evidence URI is required")
		}
		return s.contract.GetSubmitEvidenceInstruction(req.MarketID, address, req.EvidenceURI), nil

	default:
		return nil, fmt.Errorf("unknown instruction action: %s", req.Action)
	}
}

// SubmitEvidence submits a wallet-signed submit_resolution_evidence transaction
func (s *MarketService) SubmitEvidence(ctx context.Context, signedTx string) (string, error) {
	return s.contract.SubmitSigned(ctx, signedTx)
}

// CreateUserAccount submits a wallet-signed create_user_account transaction
func (s *MarketService) CreateUserAccount(ctx context.Context, signedTx string) (string, error) {
	return s.contract.SubmitSigned(ctx, signedTx)
}

// GetChainStats returns the raw on-chain stats record for a wallet, zeroed
// when the account does not exist yet
func (s *MarketService) GetChainStats(ctx context.Context, address string) (map[string]interface{}, error) {
	return s.contract.GetUserStats(ctx, address)
}
