package services

import (
	"testing"
	"time"
)

// sessions are exercised without Start() so no background loops run; a nil
// chain client skips balance polling
func newTestSessionManager(timeout time.Duration) *SessionManager {
	return NewSessionManager(nil, timeout, time.Minute, time.Minute)
}

func TestSessionBeginAndGet(t *testing.T) {
	manager := newTestSessionManager(time.Hour)

	session := manager.Begin("wallet-1")
	if session == nil {
		t.Fatal("begin returned no session")
	}
	if session.WalletAddress != "wallet-1" {
		t.Errorf("unexpected wallet %q", session.WalletAddress)
	}

	got, remaining, ok := manager.Get("wallet-1")
	if !ok {
		t.Fatal("expected live session")
	}
	if got.WalletAddress != "wallet-1" {
		t.Errorf("unexpected wallet %q", got.WalletAddress)
	}
	if remaining <= 0 || remaining > time.Hour {
		t.Errorf("remaining out of range: %v", remaining)
	}

	if manager.ActiveCount() != 1 {
		t.Errorf("expected 1 active session, got %d", manager.ActiveCount())
	}
}

func TestSessionTouchSlidesWindow(t *testing.T) {
	manager := newTestSessionManager(time.Hour)
	manager.Begin("wallet-1")

	before, _, _ := manager.Get("wallet-1")

	time.Sleep(10 * time.Millisecond)
	if !manager.Touch("wallet-1") {
		t.Fatal("touch on a live session must succeed")
	}

	after, _, _ := manager.Get("wallet-1")
	if !after.StartedAt.After(before.StartedAt) {
		t.Error("touch must slide the window forward")
	}
}

func TestSessionExpiry(t *testing.T) {
	manager := newTestSessionManager(20 * time.Millisecond)
	manager.Begin("wallet-1")

	time.Sleep(40 * time.Millisecond)

	if manager.Touch("wallet-1") {
		t.Error("touch on an expired session must fail")
	}
	if _, _, ok := manager.Get("wallet-1"); ok {
		t.Error("expired session must not be retrievable")
	}
	if manager.ActiveCount() != 0 {
		t.Errorf("expired session must be removed, count %d", manager.ActiveCount())
	}
}

func TestSessionEnd(t *testing.T) {
	manager := newTestSessionManager(time.Hour)
	manager.Begin("wallet-1")
	manager.Begin("wallet-2")

	manager.End("wallet-1")

	if manager.Touch("wallet-1") {
		t.Error("ended session must not be touchable")
	}
	if !manager.Touch("wallet-2") {
		t.Error("other sessions must survive an unrelated logout")
	}
	if manager.ActiveCount() != 1 {
		t.Errorf("expected 1 active session, got %d", manager.ActiveCount())
	}
}

func TestSessionTouchUnknownWallet(t *testing.T) {
	manager := newTestSessionManager(time.Hour)
	if manager.Touch("never-signed-in") {
		t.Error("touch without a session must fail")
	}
}

func TestSessionExpireStaleSweep(t *testing.T) {
	manager := newTestSessionManager(20 * time.Millisecond)
	manager.Begin("wallet-1")
	manager.Begin("wallet-2")

	time.Sleep(40 * time.Millisecond)
	manager.Begin("wallet-3")

	manager.expireStale()

	if manager.ActiveCount() != 1 {
		t.Errorf("sweep should leave only the fresh session, count %d", manager.ActiveCount())
	}
	if _, _, ok := manager.Get("wallet-3"); !ok {
		t.Error("fresh session must survive the sweep")
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	manager := newTestSessionManager(time.Hour)
	manager.Start()
	manager.Stop()
	manager.Stop()
}
