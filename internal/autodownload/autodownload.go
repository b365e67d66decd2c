// Package autodownload implements the Auto-Downloader (spec.md §4.5):
// for each monitored title, either run a FINISHED-title batch search or
// compute missing episodes and search per-episode, queueing whatever the
// Decision Engine accepts.
package autodownload

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/decision"
	"github.com/slipstream/slipstream/internal/search"
	"github.com/slipstream/slipstream/internal/store"
)

// statusFinished mirrors the Title.Status value used for fully-aired
// series, where a single batch release is sought instead of per-episode
// searches.
const statusFinished = "FINISHED"

// batchEpisodeNumber is the sentinel DownloadHistory.EpisodeNumber value
// that marks a record as a whole-release batch download rather than a
// single episode, per spec.md §4.5 and store.DownloadHistory.IsBatch.
const batchEpisodeNumber = -1

// maxBatchCandidates caps how many top batch releases are considered
// before giving up on a FINISHED title this pass.
const maxBatchCandidates = 3

// maxCandidatesPerTitle is the safety limit on total candidates examined
// across all missing episodes of one title, per §4.5 step 4.
const maxCandidatesPerTitle = 50

// Queuer hands an accepted release to the BT engine.
type Queuer interface {
	AddMagnet(ctx context.Context, downloadURL, category string) error
}

// Downloader runs the Auto-Downloader loop over monitored titles.
type Downloader struct {
	store    *store.Store
	selector *search.Selector
	indexer  search.IndexerClient
	queuer   Queuer
	logger   zerolog.Logger

	// TitleSleep spaces consecutive title scans out, per §4.5's final
	// step, so a library of hundreds of titles doesn't saturate the
	// indexer or BT engine in a tight loop.
	TitleSleep time.Duration
}

// New creates a Downloader.
func New(st *store.Store, selector *search.Selector, indexer search.IndexerClient, queuer Queuer, logger zerolog.Logger) *Downloader {
	return &Downloader{
		store:      st,
		selector:   selector,
		indexer:    indexer,
		queuer:     queuer,
		logger:     logger.With().Str("component", "autodownload").Logger(),
		TitleSleep: time.Second,
	}
}

// Run processes every monitored title in turn.
func (d *Downloader) Run(ctx context.Context) error {
	titles, err := d.store.ListMonitored(ctx)
	if err != nil {
		return fmt.Errorf("autodownload: list monitored titles: %w", err)
	}

	for i, title := range titles {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.ProcessTitle(ctx, title); err != nil {
			d.logger.Error().Err(err).Int64("animeId", title.ID).Msg("title processing failed")
		}
		if i < len(titles)-1 && d.TitleSleep > 0 {
			time.Sleep(d.TitleSleep)
		}
	}
	return nil
}

// ProcessTitle runs the FINISHED-title batch path or the per-episode
// missing-episode path for a single title.
func (d *Downloader) ProcessTitle(ctx context.Context, title store.Title) error {
	if title.Status == statusFinished {
		return d.processBatch(ctx, title)
	}
	return d.processMissingEpisodes(ctx, title)
}

// processBatch implements §4.5's FINISHED-title batch path: search once,
// take up to maxBatchCandidates releases, and accept the first that isn't
// blocklisted, malformed, or already recorded.
func (d *Downloader) processBatch(ctx context.Context, title store.Title) error {
	query := title.RomajiTitle
	if query == "" {
		query = title.EnglishTitle
	}

	releases, err := d.indexer.Search(ctx, query+" batch")
	if err != nil {
		return fmt.Errorf("autodownload: batch search: %w", err)
	}

	considered := 0
	for _, r := range releases {
		if considered >= maxBatchCandidates {
			break
		}
		considered++

		if r.InfoHash == "" || len(r.InfoHash) < 8 {
			continue // malformed hash: can't blocklist-check or dedupe it
		}
		blocked, err := d.store.IsBlocked(ctx, r.InfoHash)
		if err != nil {
			return fmt.Errorf("autodownload: blocklist check: %w", err)
		}
		if blocked {
			continue
		}
		downloaded, err := d.store.IsDownloaded(ctx, r.Title)
		if err != nil {
			return fmt.Errorf("autodownload: history check: %w", err)
		}
		if downloaded {
			continue
		}

		if err := d.queuer.AddMagnet(ctx, r.DownloadURL, "anime"); err != nil {
			return fmt.Errorf("autodownload: queue batch release: %w", err)
		}
		return d.store.RecordDownload(ctx, title.ID, r.Title, batchEpisodeNumber, "", r.InfoHash)
	}
	return nil
}

// processMissingEpisodes implements §4.5's per-episode path: compute the
// missing set, search each one, and queue the first acceptable candidate,
// stopping early once the safety limit on examined candidates is hit.
func (d *Downloader) processMissingEpisodes(ctx context.Context, title store.Title) error {
	if title.EpisodeCount == nil {
		return nil // total episode count unknown: nothing to diff against
	}

	missing, err := d.store.GetMissingEpisodes(ctx, title.ID, *title.EpisodeCount)
	if err != nil {
		return fmt.Errorf("autodownload: compute missing episodes: %w", err)
	}

	const defaultSeason = 1
	covered := make(map[int]bool)
	examined := 0

	for _, ep := range missing {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if covered[ep] {
			continue
		}

		candidates, err := d.selector.Select(ctx, title.ID, ep, defaultSeason)
		if err != nil {
			d.logger.Warn().Err(err).Int64("animeId", title.ID).Int("episode", ep).Msg("search failed")
			continue
		}

		for _, c := range candidates {
			examined++
			if examined > maxCandidatesPerTitle {
				return nil // safety limit: stop scanning this title this pass
			}
			if !decision.ShouldDownload(c.Action) {
				continue
			}

			if err := d.queuer.AddMagnet(ctx, c.Release.DownloadURL, "anime"); err != nil {
				return fmt.Errorf("autodownload: queue episode %d: %w", ep, err)
			}
			if err := d.store.RecordDownload(ctx, title.ID, c.Release.Title, c.Episode, c.Group, c.Release.InfoHash); err != nil {
				return fmt.Errorf("autodownload: record episode %d: %w", ep, err)
			}
			covered[ep] = true
			break
		}

		if len(covered) == len(missing) {
			return nil // early exit: every missing episode is now covered
		}
	}
	return nil
}
