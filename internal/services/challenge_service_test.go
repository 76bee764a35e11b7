package services

import (
	"testing"
	"time"
)

func TestChallengeIssueAndConsume(t *testing.T) {
	store := NewChallengeStore()

	nonce, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if nonce == "" {
		t.Fatal("expected a non-empty nonce")
	}

	if !store.Consume("wallet1", nonce) {
		t.Error("expected freshly issued nonce to consume")
	}
}

func TestChallengeConsumeIsSingleUse(t *testing.T) {
	store := NewChallengeStore()

	nonce, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if !store.Consume("wallet1", nonce) {
		t.Fatal("first consume should succeed")
	}
	if store.Consume("wallet1", nonce) {
		t.Error("second consume of the same nonce should fail")
	}
}

func TestChallengeConsumeWrongValues(t *testing.T) {
	store := NewChallengeStore()

	nonce, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if store.Consume("wallet2", nonce) {
		t.Error("nonce should not validate for a different wallet")
	}
	if store.Consume("wallet1", "bogus") {
		t.Error("wrong nonce should not validate")
	}
	// The wrong-nonce attempt above burned the outstanding challenge
	if store.Consume("wallet1", nonce) {
		t.Error("nonce should be gone after a failed attempt")
	}
}

func TestChallengeIssueReplacesOutstanding(t *testing.T) {
	store := NewChallengeStore()

	first, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	second, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh nonce on reissue")
	}

	if store.Consume("wallet1", first) {
		t.Error("replaced nonce should not validate")
	}

	// Re-issue again since the failed consume removed the entry
	third, err := store.Issue("wallet1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !store.Consume("wallet1", third) {
		t.Error("latest nonce should validate")
	}
}

func TestChallengeExpiry(t *testing.T) {
	store := NewChallengeStore()

	store.mu.Lock()
	store.nonces["wallet1"] = challenge{nonce: "stale", issuedAt: time.Now().Add(-6 * time.Minute)}
	store.mu.Unlock()

	if store.Consume("wallet1", "stale") {
		t.Error("expired nonce should not validate")
	}
}
