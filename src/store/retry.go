package store

import (
	"context"
	"errors"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// withRetry runs attempt until it stops reporting errStale or the retry
// budget is spent.
func withRetry(ctx context.Context, retries int, collection string, id primitive.ObjectID, attempt func() error) error {
	if retries <= 0 {
		retries = DefaultRetries
	}
	for i := 0; i < retries; i++ {
		err := attempt()
		if !errors.Is(err, errStale) {
			return err
		}
		metrics.IncStoreConflict(collection)
		lib.Log.Debug("version conflict, retrying",
			zap.String("collection", collection),
			zap.String("id", id.Hex()),
			zap.Int("attempt", i+1),
		)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	lib.Log.Warn("version conflict retries exhausted",
		zap.String("collection", collection),
		zap.String("id", id.Hex()),
	)
	return ErrVersionConflict
}
