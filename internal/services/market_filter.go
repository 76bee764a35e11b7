package services

import (
	"sort"
	"strings"
	"time"

	"pulse-markets/internal/models"
)

type MarketTab string

const (
	TabAll        MarketTab = "all"
	TabActive     MarketTab = "active"
	TabEndingSoon MarketTab = "ending_soon"
	TabResolved   MarketTab = "resolved"
	TabTrending   MarketTab = "trending"
)

type MarketSort string

const (
	SortNewest  MarketSort = "newest"
	SortEnding  MarketSort = "ending"
	SortVolume  MarketSort = "volume"
	SortPopular MarketSort = "popular"
)

// MarketFilter describes one pass of the listing pipeline. Zero values mean
// "no filtering" for that stage.
type MarketFilter struct {
	Search   string
	Tab      MarketTab
	Category models.MarketCategory
	Status   models.MarketStatus
	SortBy   MarketSort
}

// FilterMarkets applies the fixed filter pipeline: search, tab, category,
// status, then sort. Pure and deterministic — the input slice is never
// mutated and equal inputs always produce the same ordering.
func FilterMarkets(markets []models.Market, filter MarketFilter) []models.Market {
	return FilterMarketsAt(markets, filter, time.Now())
}

// FilterMarketsAt is FilterMarkets with an explicit reference time for the
// ending-soon window
func FilterMarketsAt(markets []models.Market, filter MarketFilter, now time.Time) []models.Market {
	result := make([]models.Market, 0, len(markets))

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, market := range markets {
		if search != "" && !matchesSearch(market, search) {
			continue
		}
		if !matchesTab(market, filter.Tab, now) {
			continue
		}
		if filter.Category != "" && market.Category != filter.Category {
			continue
		}
		if filter.Status != "" && market.Status != filter.Status {
			continue
		}
		result = append(result, market)
	}

	sortMarkets(result, filter.SortBy)

	// Trending is an ordering as much as a filter: pool-heavy markets first
	if filter.Tab == TabTrending && filter.SortBy == "" {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].TotalPool.GreaterThan(result[j].TotalPool)
		})
	}

	return result
}

func matchesSearch(market models.Market, search string) bool {
	return strings.Contains(strings.ToLower(market.Title), search) ||
		strings.Contains(strings.ToLower(market.Description), search) ||
		strings.Contains(strings.ToLower(market.OptionA), search) ||
		strings.Contains(strings.ToLower(market.OptionB), search)
}

func matchesTab(market models.Market, tab MarketTab, now time.Time) bool {
	switch tab {
	case TabActive:
		return market.Status == models.MarketStatusActive
	case TabEndingSoon:
		return market.Status == models.MarketStatusActive &&
			market.EndTime.After(now) &&
			market.EndTime.Before(now.Add(24*time.Hour))
	case TabResolved:
		return market.Status == models.MarketStatusResolved
	case TabTrending:
		return market.Status == models.MarketStatusActive
	default:
		return true
	}
}

func sortMarkets(markets []models.Market, sortBy MarketSort) {
	switch sortBy {
	case SortNewest:
		sort.SliceStable(markets, func(i, j int) bool {
			return markets[i].CreatedAt.After(markets[j].CreatedAt)
		})
	case SortEnding:
		sort.SliceStable(markets, func(i, j int) bool {
			return markets[i].EndTime.Before(markets[j].EndTime)
		})
	case SortVolume:
		sort.SliceStable(markets, func(i, j int) bool {
			return markets[i].TotalPool.GreaterThan(markets[j].TotalPool)
		})
	case SortPopular:
		sort.SliceStable(markets, func(i, j int) bool {
			popI := markets[i].SharesA.Add(markets[i].SharesB)
			popJ := markets[j].SharesA.Add(markets[j].SharesB)
			return popI.GreaterThan(popJ)
		})
	}
}
