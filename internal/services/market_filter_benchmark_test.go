package services

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"pulse-markets/internal/models"

	"github.com/shopspring/decimal"
)

func benchmarkMarkets(n int) []models.Market {
	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	categories := []models.MarketCategory{
		models.CategoryPolitics,
		models.CategorySports,
		models.CategoryCrypto,
		models.CategoryTech,
		models.CategoryOther,
	}

	markets := make([]models.Market, n)
	for i := range markets {
		markets[i] = models.Market{
			ID:        uint64(i + 1),
			Title:     fmt.Sprintf("Market %d", i),
			Category:  categories[rng.Intn(len(categories))],
			Status:    models.MarketStatusActive,
			TotalPool: decimal.NewFromInt(int64(rng.Intn(100000))),
			SharesA:   decimal.NewFromInt(int64(rng.Intn(1000))),
			SharesB:   decimal.NewFromInt(int64(rng.Intn(1000))),
			CreatedAt: now.Add(-time.Duration(rng.Intn(720)) * time.Hour),
			EndTime:   now.Add(time.Duration(rng.Intn(720)) * time.Hour),
		}
	}
	return markets
}

func BenchmarkFilterMarkets(b *testing.B) {
	markets := benchmarkMarkets(1000)
	filter := MarketFilter{
		Tab:      TabActive,
		Category: models.CategoryCrypto,
		SortBy:   SortVolume,
	}
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FilterMarketsAt(markets, filter, now)
	}
}

func BenchmarkTransformMarket(b *testing.B) {
	raw := map[string]interface{}{
		"id":         "42",
		"creator":    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"question":   "Benchmark market",
		"optionA":    "Yes",
		"option_b":   "No",
		"category":   "crypto",
		"status":     "active",
		"shares_a":   "1200.5",
		"sharesB":    float64(300),
		"total_pool": map[string]interface{}{"value": "1500.75"},
		"end_time":   "1767225600",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TransformMarket(raw)
	}
}
