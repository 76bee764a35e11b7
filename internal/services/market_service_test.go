package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pulse-markets/internal/blockchain"
)

func newInstructionService(t *testing.T) *MarketService {
	t.Helper()
	contract := blockchain.NewMarketContract(nil, "Prog1111111111111111111111111111111111111111", "Mint111111111111111111111111111111111111111")
	return NewMarketService(setupTestDB(t), contract)
}

func TestBuildInstructionCreateMarket(t *testing.T) {
	svc := newInstructionService(t)

	params, err := svc.BuildInstruction(context.Background(), "wallet1", InstructionRequest{
		Action:  "create_market",
		Title:   "Will BTC close above 100k?",
		OptionA: "Yes",
		OptionB: "No",
		EndTime: time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("BuildInstruction failed: %v", err)
	}
	if params["instruction"] != "create_market" {
		t.Errorf("unexpected instruction: %v", params["instruction"])
	}
}

func TestBuildInstructionCreateMarketValidation(t *testing.T) {
	svc := newInstructionService(t)
	ctx := context.Background()

	if _, err := svc.BuildInstruction(ctx, "wallet1", InstructionRequest{
		Action:  "create_market",
		OptionA: "Yes",
		OptionB: "No",
		EndTime: time.Now().Add(time.Hour).Unix(),
	}); err == nil {
		t.Error("expected an error for a missing title")
	}

	if _, err := svc.BuildInstruction(ctx, "wallet1", InstructionRequest{
		Action:  "create_market",
		Title:   "t",
		OptionA: "Yes",
		OptionB: "No",
		EndTime: time.Now().Add(-time.Hour).Unix(),
	}); err == nil {
		t.Error("expected an error for a past end time")
	}
}

func TestBuildInstructionResolveOutcome(t *testing.T) {
	svc := newInstructionService(t)
	ctx := context.Background()

	params, err := svc.BuildInstruction(ctx, "wallet1", InstructionRequest{
		Action:   "resolve_market",
		MarketID: 3,
		Outcome:  "option_a",
	})
	if err != nil {
		t.Fatalf("BuildInstruction failed: %v", err)
	}
	if params["outcome"] != "option_a" {
		t.Errorf("unexpected outcome: %v", params["outcome"])
	}

	if _, err := svc.BuildInstruction(ctx, "wallet1", InstructionRequest{
		Action:   "resolve_market",
		MarketID: 3,
		Outcome:  "maybe",
	}); err == nil {
		t.Error("expected an error for an invalid outcome")
	}
}

func TestBuildInstructionEvidenceRequiresURI(t *testing.T) {
	svc := newInstructionService(t)

	if _, err := svc.BuildInstruction(context.Background(), "wallet1", InstructionRequest{
		Action:   "submit_resolution_evidence",
		MarketID: 3,
	}); err == nil {
		t.Error("expected an error for a missing evidence URI")
	}
}

func TestBuildInstructionBuySharesOption(t *testing.T) {
	svc := newInstructionService(t)

	if _, err := svc.BuildInstruction(context.Background(), "wallet1", InstructionRequest{
		Action:   "buy_shares",
		MarketID: 1,
		Option:   "c",
		Amount:   decimal.NewFromInt(10),
	}); err == nil {
		t.Error("expected an error for an unknown option")
	}
}

func TestBuildInstructionUnknownAction(t *testing.T) {
	svc := newInstructionService(t)

	if _, err := svc.BuildInstruction(context.Background(), "wallet1", InstructionRequest{
		Action: "transfer_ownership",
	}); err == nil {
		t.Error("expected an error for an unknown action")
	}
}
