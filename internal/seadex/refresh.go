package seadex

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/store"
)

// Recommender is the narrow contract internal/search and
// internal/autodownload need for the cache-refresh sweep; satisfied by
// *Client.
type Recommender interface {
	GetRecommendation(ctx context.Context, animeID int64, anilistID int) (store.SeaDexCache, error)
}

// Refresher periodically repopulates store.SeaDexCache for monitored
// titles, keeping Search & Candidate Selection's is_seadex annotation
// (spec.md §4.4 step 5) and the Auto-Downloader's batch path (§4.5 step 1)
// off a cold cache.
type Refresher struct {
	store       *store.Store
	recommender Recommender
	logger      zerolog.Logger
}

// NewRefresher creates a Refresher bound to store and recommender.
func NewRefresher(st *store.Store, recommender Recommender, logger zerolog.Logger) *Refresher {
	return &Refresher{store: st, recommender: recommender, logger: logger.With().Str("component", "seadex").Logger()}
}

// RefreshStale repopulates the cache for every monitored title whose
// cached row is missing or older than the 24h freshness window.
func (r *Refresher) RefreshStale(ctx context.Context) error {
	titles, err := r.store.ListMonitored(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var firstErr error
	for _, t := range titles {
		cache, err := r.store.GetSeaDexCache(ctx, t.ID)
		if err == nil && cache.Fresh(now) {
			continue
		}

		fresh, err := r.recommender.GetRecommendation(ctx, t.ID, int(t.ID))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			r.logger.Warn().Err(err).Int64("anime_id", t.ID).Msg("seadex recommendation fetch failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := r.store.UpsertSeaDexCache(ctx, fresh); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
