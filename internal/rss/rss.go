// Package rss implements the RSS Service (spec.md §4.6): per-feed
// fetch-and-hash, cursor-based new-item selection, and direct download
// queueing. Unlike Search & Candidate Selection, RSS never consults the
// Decision Engine — every new feed item not already blocklisted or
// recorded is queued as-is.
package rss

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/parser"
	"github.com/slipstream/slipstream/internal/store"
)

// Item is a single feed entry, ordered newest-first by the Fetcher.
type Item struct {
	GUID        string
	Title       string
	DownloadURL string
	InfoHash    string
}

// Fetcher retrieves the current items for a feed URL; satisfied by
// internal/indexer/feedfetcher.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]Item, error)
}

// Queuer hands an accepted item to the BT engine; satisfied by
// internal/btengine/qbittorrent.Client.
type Queuer interface {
	AddMagnet(ctx context.Context, downloadURL, category string) error
}

// Service runs the RSS feed loop.
type Service struct {
	store   *store.Store
	fetcher Fetcher
	queuer  Queuer
	logger  zerolog.Logger

	// InterFeedSleep spaces consecutive feed fetches out, per §4.6 step 5,
	// so a burst of configured feeds doesn't hammer indexers back-to-back.
	InterFeedSleep time.Duration
}

// New creates an RSS Service.
func New(st *store.Store, fetcher Fetcher, queuer Queuer, logger zerolog.Logger) *Service {
	return &Service{
		store:          st,
		fetcher:        fetcher,
		queuer:         queuer,
		logger:         logger.With().Str("component", "rss").Logger(),
		InterFeedSleep: 2 * time.Second,
	}
}

// Run processes every enabled feed in turn.
func (s *Service) Run(ctx context.Context) error {
	feeds, err := s.store.ListEnabledFeeds(ctx)
	if err != nil {
		return fmt.Errorf("rss: list enabled feeds: %w", err)
	}

	for i, feed := range feeds {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.processFeed(ctx, feed); err != nil {
			s.logger.Error().Err(err).Str("feed", feed.Name).Msg("feed processing failed")
		}
		if i < len(feeds)-1 && s.InterFeedSleep > 0 {
			time.Sleep(s.InterFeedSleep)
		}
	}
	return nil
}

// processFeed implements §4.6 steps 1-4 for a single feed.
func (s *Service) processFeed(ctx context.Context, feed store.RssFeed) error {
	// Step 1: fetch + hash.
	items, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return fmt.Errorf("fetch feed %q: %w", feed.Name, err)
	}
	if len(items) == 0 {
		return nil
	}

	// Step 2: cursor-based new-item selection. Items are newest-first; walk
	// from the top until the stored cursor hash is seen (or the list is
	// exhausted on a first run, where nothing prior exists to compare).
	var newItems []Item
	for _, item := range items {
		h := itemHash(item)
		if feed.LastItemHash != "" && h == feed.LastItemHash {
			break
		}
		newItems = append(newItems, item)
	}
	if feed.LastItemHash == "" {
		// First run for this feed: record the cursor without queuing a
		// historical backlog.
		return s.store.UpdateFeedCursor(ctx, feed.ID, itemHash(items[0]))
	}

	// Step 3: per-item parse + dedupe + queue + record.
	for _, item := range newItems {
		if err := s.handleItem(ctx, feed, item); err != nil {
			s.logger.Warn().Err(err).Str("feed", feed.Name).Str("item", item.Title).Msg("skipping item")
		}
	}

	// Step 4: atomic cursor update to the newest item seen this pass.
	return s.store.UpdateFeedCursor(ctx, feed.ID, itemHash(items[0]))
}

func (s *Service) handleItem(ctx context.Context, feed store.RssFeed, item Item) error {
	parsed, err := parser.Parse(item.Title)
	if err != nil {
		return fmt.Errorf("parse title: %w", err)
	}

	if item.InfoHash != "" {
		blocked, err := s.store.IsBlocked(ctx, item.InfoHash)
		if err != nil {
			return fmt.Errorf("blocklist check: %w", err)
		}
		if blocked {
			return nil
		}
	}

	downloaded, err := s.store.IsDownloaded(ctx, item.Title)
	if err != nil {
		return fmt.Errorf("history check: %w", err)
	}
	if downloaded {
		return nil
	}

	if err := s.queuer.AddMagnet(ctx, item.DownloadURL, "anime"); err != nil {
		return fmt.Errorf("queue download: %w", err)
	}

	return s.store.RecordDownload(ctx, feed.AnimeID, item.Title, parsed.EpisodeNumber, parsed.Group, item.InfoHash)
}

func itemHash(item Item) string {
	sum := sha256.Sum256([]byte(item.GUID + "|" + item.Title))
	return hex.EncodeToString(sum[:])
}
