// Package completion implements the Completion Monitor (spec.md §4.8):
// reconciling BT engine state against the catalogue, recovering from
// moved/renamed payloads, and importing finished downloads exactly once.
package completion

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/slipstream/slipstream/internal/btengine/qbittorrent"
	"github.com/slipstream/slipstream/internal/eventbus"
	"github.com/slipstream/slipstream/internal/import/renamer"
	"github.com/slipstream/slipstream/internal/library/organizer"
	"github.com/slipstream/slipstream/internal/store"
)

// importFanOut bounds how many torrents are imported concurrently per tick,
// per §5's "bounded fan-out (e.g. 8)" note on the preview/rename step.
const importFanOut = 8

// defaultStalledTimeout is how long a StalledDL|MetaDL torrent with zero
// seeds must sit before §4.8 step 2 gives up on it.
const defaultStalledTimeout = 48 * time.Hour

// PathMapping rewrites a BT-engine-reported path into the path this
// process sees on disk (e.g. the BT engine runs in a different container).
// The first mapping whose RemotePrefix matches wins, replaced once.
type PathMapping struct {
	RemotePrefix string
	LocalPrefix  string
}

// BTClient is the subset of the BT engine contract (spec.md §6) the
// Completion Monitor drives.
type BTClient interface {
	GetTorrents(ctx context.Context, category string) ([]qbittorrent.Torrent, error)
	DeleteTorrent(ctx context.Context, hash string, deleteFiles bool) error
}

// Prober extracts technical MediaInfo from a source file.
type Prober interface {
	Probe(ctx context.Context, path string) (*store.MediaInfo, error)
}

// Monitor runs the two independent loops spec.md §4.8 describes: a 60s
// import-reconciliation loop and a 2s progress-broadcast loop.
type Monitor struct {
	store    *store.Store
	bt       BTClient
	resolver *renamer.Resolver
	prober   Prober
	fileops  *organizer.Service
	bus      *eventbus.Bus
	logger   zerolog.Logger

	Category       string
	PathMappings   []PathMapping
	ImportMode     organizer.Mode
	LibraryRoot    string
	StalledTimeout time.Duration
	SeriesType     string // renamer.TokenContext.SeriesType, fixed to "anime"
}

// New creates a Monitor.
func New(st *store.Store, bt BTClient, resolver *renamer.Resolver, prober Prober, bus *eventbus.Bus, logger zerolog.Logger) *Monitor {
	return &Monitor{
		store:          st,
		bt:             bt,
		resolver:       resolver,
		prober:         prober,
		fileops:        organizer.New(logger),
		bus:            bus,
		logger:         logger.With().Str("component", "completion").Logger(),
		Category:       "anime",
		ImportMode:     organizer.ModeHardlink,
		StalledTimeout: defaultStalledTimeout,
		SeriesType:     "anime",
	}
}

// RunImportLoop runs one tick of the §4.8 import loop.
func (m *Monitor) RunImportLoop(ctx context.Context) error {
	// Step 1: list torrents from the BT engine.
	torrents, err := m.bt.GetTorrents(ctx, m.Category)
	if err != nil {
		return fmt.Errorf("completion: list torrents: %w", err)
	}

	var completed []qbittorrent.Torrent
	for _, t := range torrents {
		// Step 2: dead-torrent detection.
		if m.isDead(t) {
			if err := m.bt.DeleteTorrent(ctx, t.Hash, true); err != nil {
				m.logger.Error().Err(err).Str("hash", t.Hash).Msg("failed to delete dead torrent")
				continue
			}
			if err := m.store.AddToBlocklist(ctx, t.Hash, "dead: "+string(t.State)); err != nil {
				m.logger.Error().Err(err).Str("hash", t.Hash).Msg("failed to blocklist dead torrent")
			}
			continue
		}
		// Step 3: collect completed torrents.
		if t.Progress >= 1.0 {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		return nil
	}

	// Step 4: batch fetch history, titles, and episode statuses.
	hashes := make([]string, len(completed))
	for i, t := range completed {
		hashes[i] = t.Hash
	}
	histories, err := m.store.GetDownloadsByHashes(ctx, hashes)
	if err != nil {
		return fmt.Errorf("completion: batch history fetch: %w", err)
	}

	animeIDSet := make(map[int64]bool)
	for _, h := range histories {
		animeIDSet[h.AnimeID] = true
	}
	animeIDs := make([]int64, 0, len(animeIDSet))
	for id := range animeIDSet {
		animeIDs = append(animeIDs, id)
	}
	titles, err := m.store.GetTitlesByIDs(ctx, animeIDs)
	if err != nil {
		return fmt.Errorf("completion: batch title fetch: %w", err)
	}

	// Step 5: process each completed torrent, bounded to importFanOut
	// concurrent imports so filesystem walks and media probing don't
	// exhaust file descriptors.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importFanOut)

	for _, t := range completed {
		t := t
		history, ok := histories[strings.ToLower(t.Hash)]
		if !ok || history.Imported {
			continue // step 5: no history row, or already imported
		}
		title, ok := titles[history.AnimeID]
		if !ok {
			m.logger.Warn().Int64("animeId", history.AnimeID).Msg("completed torrent references unknown title")
			continue
		}

		g.Go(func() error {
			if err := m.processCompleted(gctx, t, title, history); err != nil {
				m.logger.Error().Err(err).Str("hash", t.Hash).Msg("import failed")
			}
			return nil
		})
	}

	return g.Wait()
}

// isDead implements step 2's unconditional Error|MissingFiles branch and
// the StalledDL|MetaDL + zero-seeds + timeout branch.
func (m *Monitor) isDead(t qbittorrent.Torrent) bool {
	if t.IsErrored() {
		return true
	}
	if t.IsStalledDownload() && t.NumSeeds == 0 && time.Since(t.AddedOn) > m.StalledTimeout {
		return true
	}
	return false
}

// processCompleted handles one completed torrent's step 5 body: resolve
// the source path, recover if missing, and import a file or a directory.
func (m *Monitor) processCompleted(ctx context.Context, t qbittorrent.Torrent, title store.Title, history store.DownloadHistory) error {
	source := m.resolveSourcePath(t.ContentPath)

	if !pathExists(source) {
		recovered, err := m.recover(ctx, title, history)
		if err != nil {
			return fmt.Errorf("recovery: %w", err)
		}
		if recovered {
			return m.store.SetImported(ctx, history.ID, true)
		}
		m.logger.Warn().Str("hash", t.Hash).Str("source", source).Msg("source missing and recovery failed; will retry next tick")
		return nil
	}

	imported, err := m.importSourcePath(ctx, title, source, history)
	if err != nil {
		return err
	}
	if imported > 0 {
		return m.store.SetImported(ctx, history.ID, true)
	}
	return nil
}

// resolveSourcePath applies the first matching remote→local path mapping,
// replacing its prefix exactly once, per §4.8 step 5.
func (m *Monitor) resolveSourcePath(remotePath string) string {
	for _, pm := range m.PathMappings {
		if strings.HasPrefix(remotePath, pm.RemotePrefix) {
			return strings.Replace(remotePath, pm.RemotePrefix, pm.LocalPrefix, 1)
		}
	}
	return remotePath
}

// RunProgressLoop runs one tick of the §4.8 progress loop, broadcasting a
// DownloadProgress event for every in-flight torrent.
func (m *Monitor) RunProgressLoop(ctx context.Context) error {
	torrents, err := m.bt.GetTorrents(ctx, m.Category)
	if err != nil {
		return fmt.Errorf("completion: list torrents: %w", err)
	}

	sort.Slice(torrents, func(i, j int) bool { return torrents[i].Hash < torrents[j].Hash })
	for _, t := range torrents {
		if t.Progress >= 1.0 {
			continue
		}
		m.bus.Publish(eventbus.New(eventbus.DownloadProgress, map[string]any{
			"hash":     t.Hash,
			"name":     t.Name,
			"progress": t.Progress,
		}))
	}
	return nil
}
