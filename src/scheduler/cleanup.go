package scheduler

import (
	"context"
	"log"
	"time"
)

// Purger deletes read notifications older than maxAge.
type Purger interface {
	PurgeRead(ctx context.Context, maxAge time.Duration) (int64, error)
}

// StartCleanupScheduler purges once right away and then every interval until ctx is done.
func StartCleanupScheduler(ctx context.Context, notifications Purger, interval, maxAge time.Duration) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Println("Running initial cleanup of read notifications...")
		runCleanup(ctx, notifications, maxAge)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Println("Running scheduled cleanup of read notifications...")
				runCleanup(ctx, notifications, maxAge)
			}
		}
	}()

	return done
}

func runCleanup(ctx context.Context, notifications Purger, maxAge time.Duration) {
	removed, err := notifications.PurgeRead(ctx, maxAge)
	if err != nil {
		log.Printf("Error during notification cleanup: %v", err)
		return
	}
	log.Printf("Notification cleanup completed, %d removed", removed)
}
