package jobs

import (
	"context"
	"log"
	"time"

	"pulse-markets/internal/services"
)

// MarketRefreshJob keeps the in-memory market snapshot in sync with the chain
type MarketRefreshJob struct {
	service *services.MarketService
	stop    chan struct{}
}

func NewMarketRefreshJob(service *services.MarketService) *MarketRefreshJob {
	return &MarketRefreshJob{
		service: service,
		stop:    make(chan struct{}),
	}
}

// Start begins the periodic refresh loop
func (j *MarketRefreshJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := j.service.Refresh(ctx); err != nil {
			log.Printf("Initial market refresh error: %v", err)
		}
		cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := j.service.Refresh(ctx); err != nil {
					log.Printf("Market refresh error: %v", err)
				}
				cancel()
			}
		}
	}()
}

// Stop halts the refresh loop
func (j *MarketRefreshJob) Stop() {
	close(j.stop)
}
