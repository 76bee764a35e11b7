package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"lucky", "sharp", "quick", "calm", "bold",
	"keen", "wise", "rapid", "solid", "prime",
	"clear", "early", "late", "deep", "high",
	"long", "true", "exact", "sure", "level",
}

var nouns = []string{
	"oracle", "trader", "signal", "ledger", "margin",
	"hedge", "streak", "spread", "payout", "ticker",
	"stake", "quote", "index", "yield", "basis",
	"delta", "alpha", "vector", "edge", "pulse",
}

// GenerateUsername creates a random username in the format "adjective-noun-XXXX"
// where XXXX is a random 4-digit number
func GenerateUsername() (string, error) {
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}

	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	username := fmt.Sprintf("%s-%s-%04d",
		adjectives[adjIdx.Int64()],
		nouns[nounIdx.Int64()],
		suffix.Int64(),
	)

	return username, nil
}
