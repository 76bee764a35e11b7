package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const challengeTTL = 5 * time.Minute

// ChallengeStore issues single-use login nonces per wallet. A signature is
// only accepted over a message containing a nonce this store issued, so a
// captured signature cannot be replayed after the nonce is consumed.
type ChallengeStore struct {
	mu     sync.Mutex
	nonces map[string]challenge
}

type challenge struct {
	nonce    string
	issuedAt time.Time
}

// NewChallengeStore creates a new ChallengeStore
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		nonces: make(map[string]challenge),
	}
}

// LoginMessage is the exact byte sequence a wallet must sign for a nonce
func LoginMessage(nonce string) []byte {
	return []byte("Sign this message to authenticate with Pulse Markets\nNonce: " + nonce)
}

// Issue creates a fresh nonce for a wallet, replacing any outstanding one
func (s *ChallengeStore) Issue(walletAddress string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	s.mu.Lock()
	s.nonces[walletAddress] = challenge{nonce: nonce, issuedAt: time.Now()}
	s.mu.Unlock()

	return nonce, nil
}

// Consume removes the wallet's outstanding nonce if it matches and has not
// expired. Returns false otherwise; a consumed nonce never validates twice.
func (s *ChallengeStore) Consume(walletAddress, nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.nonces[walletAddress]
	if !ok {
		return false
	}
	delete(s.nonces, walletAddress)

	if time.Since(issued.issuedAt) > challengeTTL {
		return false
	}
	return issued.nonce == nonce
}
