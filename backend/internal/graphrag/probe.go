package graphrag

import (
	"context"

	"go.uber.org/zap"

	apperrors "sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

// ProbeAvailability reports which categories hold at least one embeddable
// item for the owner, and how many. Probing first avoids paying embedding,
// search and generation cost on categories known to be empty.
//
// A single category failing is treated as absent and logged; every category
// failing means the store itself is unreachable.
func ProbeAvailability(ctx context.Context, store GraphStore, ownerID string) (map[Category]int, error) {
	log := logger.Get()

	available := make(map[Category]int)
	var lastErr error
	failures := 0

	for _, category := range AllCategories {
		count, err := store.ProbeCategory(ctx, category, ownerID)
		if err != nil {
			failures++
			lastErr = err
			log.Warn("Availability probe failed for category",
				zap.String("category", category.String()),
				zap.String("owner_id", ownerID),
				zap.Error(err),
			)
			continue
		}
		if count > 0 {
			available[category] = count
			log.Debug("Found content in category",
				zap.String("category", category.String()),
				zap.String("owner_id", ownerID),
				zap.Int("count", count),
			)
		}
	}

	if failures == len(AllCategories) {
		return nil, apperrors.NewStoreUnavailable("availability probe", lastErr)
	}

	return available, nil
}
