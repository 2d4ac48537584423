package service

import (
	"context"
	"log"
	"time"
)

// RunMaintenance drives the periodic background duties: epoch
// reclamation on every tick and an optional callback (book snapshots,
// journal truncation) on a slower cadence.
func (s *MarketService) RunMaintenance(ctx context.Context, interval time.Duration, every int, job func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AdvanceEpoch()
			n++
			if job != nil && every > 0 && n%every == 0 {
				if err := job(); err != nil {
					log.Printf("[service] maintenance job failed: %v", err)
				}
			}
		}
	}
}
