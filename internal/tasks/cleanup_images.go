package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanRemover deletes stored images that no longer have a registry
// record, and records whose file is gone.
type OrphanRemover interface {
	RemoveOrphans() (int, error)
}

// CleanupImagesTask removes orphaned image files from the image store.
type CleanupImagesTask struct{}

// Config returns the queue configuration for image cleanup tasks.
func (t CleanupImagesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_images",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupImagesProcessor creates a processor function for CleanupImagesTask.
func CleanupImagesProcessor(remover OrphanRemover) backlite.QueueProcessor[CleanupImagesTask] {
	return func(ctx context.Context, task CleanupImagesTask) error {
		if remover == nil {
			return fmt.Errorf("image store not configured")
		}

		removed, err := remover.RemoveOrphans()
		if err != nil {
			return fmt.Errorf("cleanup images: %w", err)
		}

		log.Printf("[TASK] Removed %d orphaned images", removed)
		return nil
	}
}

// NewCleanupImagesQueue creates a backlite queue for image cleanup tasks.
func NewCleanupImagesQueue(remover OrphanRemover) backlite.Queue {
	return backlite.NewQueue(CleanupImagesProcessor(remover))
}
