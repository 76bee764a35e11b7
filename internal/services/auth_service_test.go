package services

import (
	"context"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestUpdateProfileSetsFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	if _, err := svc.ProcessWalletLogin(ctx, "wallet1"); err != nil {
		t.Fatalf("ProcessWalletLogin failed: %v", err)
	}

	user, err := svc.UpdateProfile(ctx, "wallet1", strPtr("Alice"), strPtr("trader"), strPtr("https://example.com/a.png"))
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if user.DisplayName != "Alice" || user.Bio != "trader" || user.ProfileImageURL != "https://example.com/a.png" {
		t.Errorf("unexpected profile after update: %+v", user)
	}
}

func TestUpdateProfileNilLeavesUnchanged(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	if _, err := svc.ProcessWalletLogin(ctx, "wallet1"); err != nil {
		t.Fatalf("ProcessWalletLogin failed: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "wallet1", strPtr("Alice"), strPtr("trader"), nil); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	user, err := svc.UpdateProfile(ctx, "wallet1", nil, nil, nil)
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if user.DisplayName != "Alice" || user.Bio != "trader" {
		t.Errorf("nil fields should leave the profile untouched, got %+v", user)
	}
}

func TestUpdateProfileClearsWithEmptyString(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	if _, err := svc.ProcessWalletLogin(ctx, "wallet1"); err != nil {
		t.Fatalf("ProcessWalletLogin failed: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "wallet1", strPtr("Alice"), strPtr("trader"), nil); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	user, err := svc.UpdateProfile(ctx, "wallet1", nil, strPtr(""), nil)
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if user.Bio != "" {
		t.Errorf("expected bio cleared, got %q", user.Bio)
	}
	if user.DisplayName != "Alice" {
		t.Errorf("display name should survive a bio-only update, got %q", user.DisplayName)
	}

	// Confirm the cleared value persisted
	reloaded, err := svc.GetUserByAddress(ctx, "wallet1")
	if err != nil {
		t.Fatalf("GetUserByAddress failed: %v", err)
	}
	if reloaded.Bio != "" {
		t.Errorf("expected cleared bio persisted, got %q", reloaded.Bio)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	if _, err := svc.UpdateProfile(context.Background(), "ghost", strPtr("x"), nil, nil); err == nil {
		t.Error("expected an error for an unknown wallet")
	}
}
