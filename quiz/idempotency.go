package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"awsoramazon/backend/types"
)

// IdempotencyRetention is how long a graded response stays replayable.
const IdempotencyRetention = 6 * time.Hour

// ResponseStore keeps responses by idempotency key. FindResponse returns nil
// on a miss. SaveResponse must not overwrite a live record; it reports false
// when another writer got there first.
type ResponseStore interface {
	FindResponse(ctx context.Context, key string) (*types.StoredResponse, error)
	SaveResponse(ctx context.Context, key string, resp types.StoredResponse, ttl time.Duration) (bool, error)
}

// Replayer gives at-most-once grading per idempotency key.
type Replayer struct {
	Store     ResponseStore
	Retention time.Duration
}

func NewReplayer(store ResponseStore) *Replayer {
	return &Replayer{Store: store, Retention: IdempotencyRetention}
}

// Do returns the stored response for key when there is one, without calling
// compute. Otherwise it runs compute and keeps the result if it succeeded.
// An empty key disables caching.
func (r *Replayer) Do(ctx context.Context, key string, compute func(context.Context) (types.StoredResponse, error)) (types.StoredResponse, bool, error) {
	if key == "" || r == nil || r.Store == nil {
		resp, err := compute(ctx)
		return resp, false, err
	}

	cached, err := r.Store.FindResponse(ctx, key)
	if err != nil {
		return types.StoredResponse{}, false, fmt.Errorf("failed to read idempotency record: %w", err)
	}
	if cached != nil {
		return *cached, true, nil
	}

	resp, err := compute(ctx)
	if err != nil {
		return types.StoredResponse{}, false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, false, nil
	}
	stored, err := r.Store.SaveResponse(ctx, key, resp, r.Retention)
	if err != nil {
		return types.StoredResponse{}, false, fmt.Errorf("failed to save idempotency record: %w", err)
	}
	if stored {
		log.Printf("Stored graded response under idempotency key %s", key)
		return resp, false, nil
	}

	// A concurrent request with the same key saved first; answer with its record.
	winner, err := r.Store.FindResponse(ctx, key)
	if err != nil {
		return types.StoredResponse{}, false, fmt.Errorf("failed to read idempotency record: %w", err)
	}
	if winner == nil {
		log.Printf("Idempotency key %s was taken but its record is gone, returning fresh response", key)
		return resp, false, nil
	}
	log.Printf("Idempotency key %s already recorded by another request, replaying it", key)
	return *winner, true, nil
}
