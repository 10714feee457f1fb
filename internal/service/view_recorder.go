package service

import (
	"context"
	"fmt"
	"time"

	"vidstream/pkg/database"
)

// ViewRecorder deduplicates view counting in Redis: a viewer contributes
// at most one view per video per window.
type ViewRecorder struct {
	redis  *database.Redis
	window time.Duration
}

// NewViewRecorder creates a new view recorder
func NewViewRecorder(redis *database.Redis, window time.Duration) *ViewRecorder {
	return &ViewRecorder{redis: redis, window: window}
}

// ShouldRecord reports whether this viewer's view of the video should be
// counted, marking the pair for the dedup window as a side effect.
func (r *ViewRecorder) ShouldRecord(ctx context.Context, videoID, viewerID string) (bool, error) {
	key := fmt.Sprintf("viewdedup:%s:%s", videoID, viewerID)

	ok, err := r.redis.Client.SetNX(ctx, key, "1", r.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark view: %w", err)
	}

	return ok, nil
}
