// Package metadata provides per-episode descriptive metadata (title,
// airing date, filler/recap flags) to the Scheduler's metadata-refresh
// task, per spec.md §1 and §6. Only a mock provider ships: real
// AniList/Kitsu/Jikan clients are an explicit Non-goal.
package metadata

import (
	"context"
	"time"

	"github.com/slipstream/slipstream/internal/store"
)

// Episode is one episode's metadata as returned by a Provider, prior to
// being stamped with FetchedAt and stored.
type Episode struct {
	Title         string
	TitleJapanese string
	Aired         *time.Time
	Filler        bool
	Recap         bool
}

// Provider looks up episode metadata for a title by its catalogue ID.
type Provider interface {
	// GetEpisode returns metadata for one episode of a title. Providers
	// that don't track filler/recap status or a Japanese title simply
	// leave those fields zero.
	GetEpisode(ctx context.Context, animeID int64, romajiTitle string, episodeNumber int) (Episode, error)
}

// Refresher runs the metadata-refresh task: it resolves missing or stale
// EpisodeMetadata rows for monitored titles via a Provider and persists
// them, per the Scheduler's metadata-refresh entry (spec.md §4.7).
type Refresher struct {
	store    *store.Store
	provider Provider

	// StaleAfter is how long a cached EpisodeMetadata row is trusted
	// before it's refetched.
	StaleAfter time.Duration
}

// NewRefresher creates a Refresher with a 7-day staleness window.
func NewRefresher(st *store.Store, provider Provider) *Refresher {
	return &Refresher{store: st, provider: provider, StaleAfter: 7 * 24 * time.Hour}
}

// RefreshTitle fetches and stores metadata for every episode of a title up
// to its known episode count, skipping episodes whose cached row is still
// fresh.
func (r *Refresher) RefreshTitle(ctx context.Context, title store.Title) error {
	if title.EpisodeCount == nil {
		return nil
	}
	for ep := 1; ep <= *title.EpisodeCount; ep++ {
		existing, err := r.store.GetEpisodeMetadata(ctx, title.ID, ep)
		if err == nil && time.Since(existing.FetchedAt) < r.StaleAfter {
			continue
		}

		fetched, err := r.provider.GetEpisode(ctx, title.ID, title.RomajiTitle, ep)
		if err != nil {
			return err
		}
		m := store.EpisodeMetadata{
			AnimeID:       title.ID,
			EpisodeNumber: ep,
			Title:         fetched.Title,
			TitleJapanese: fetched.TitleJapanese,
			Aired:         fetched.Aired,
			Filler:        fetched.Filler,
			Recap:         fetched.Recap,
			FetchedAt:     time.Now().UTC(),
		}
		if err := r.store.UpsertEpisodeMetadata(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// RefreshMonitored runs RefreshTitle over every monitored title in the
// catalogue, continuing past individual failures so one bad title doesn't
// stop the rest of the pass.
func (r *Refresher) RefreshMonitored(ctx context.Context) error {
	titles, err := r.store.ListMonitored(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for _, t := range titles {
		if err := r.RefreshTitle(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
