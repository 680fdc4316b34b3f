package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanSharesCleaner revokes shares that no longer point at a live snip
// or at one of the owner's contacts.
type OrphanSharesCleaner interface {
	DeleteOrphanShares() (int64, error)
}

type CleanupOrphanSharesTask struct{}

func (t CleanupOrphanSharesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_shares",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupOrphanSharesProcessor(cleaner OrphanSharesCleaner) backlite.QueueProcessor[CleanupOrphanSharesTask] {
	return func(ctx context.Context, task CleanupOrphanSharesTask) error {
		if cleaner == nil {
			return fmt.Errorf("orphan shares cleaner not configured")
		}

		deleted, err := cleaner.DeleteOrphanShares()
		if err != nil {
			return fmt.Errorf("cleanup orphan shares: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] Revoked %d orphan shares", deleted)
		}
		return nil
	}
}

func NewCleanupOrphanSharesQueue(cleaner OrphanSharesCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanSharesProcessor(cleaner))
}
