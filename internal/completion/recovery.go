package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slipstream/slipstream/internal/parser"
	"github.com/slipstream/slipstream/internal/store"
)

// recover implements §4.8.1's fallback chain for a history row whose
// source path no longer exists on disk: it tries, in order, to prove the
// file was already imported by some earlier tick that crashed or raced
// before flipping the imported flag. A true result means the caller should
// mark the row imported without touching the filesystem again; false means
// genuine recovery failure, to be retried on the next tick.
func (m *Monitor) recover(ctx context.Context, title store.Title, history store.DownloadHistory) (bool, error) {
	episode := history.EpisodeNumberTruncated()

	episodeTitle := ""
	if meta, err := m.store.GetEpisodeMetadata(ctx, title.ID, episode); err == nil {
		episodeTitle = meta.Title
	}

	// Step 1/2: re-derive the expected destination from the naming
	// template and the original filename; if it already exists, the
	// import already happened.
	parsed, _ := parser.Parse(history.Filename)
	dest, _, season, err := m.destinationPath(title, parsed, history, episodeTitleOrFallback(episodeTitle, episode), nil, history.Filename)
	if err != nil {
		return false, fmt.Errorf("recovery: derive expected destination: %w", err)
	}
	if pathExists(dest) {
		return true, nil
	}

	// Step 3: scan the destination's parent directory for a sibling file
	// whose parsed episode (and season, if known) matches this history
	// row's episode.
	parentDir := filepath.Dir(dest)
	entries, err := os.ReadDir(parentDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			siblingParsed, err := parser.Parse(entry.Name())
			if err != nil {
				continue
			}
			if siblingParsed.EpisodeNumberTruncated() != episode {
				continue
			}
			if siblingParsed.Season != nil && *siblingParsed.Season != season {
				continue
			}
			return true, nil
		}
	}

	// Step 4: the episode_status row may already record a download time
	// even though the file the history row points at is gone.
	statuses, err := m.store.GetEpisodeStatusesBatch(ctx, []store.EpisodeKey{{AnimeID: title.ID, EpisodeNumber: episode}})
	if err == nil {
		if status, ok := statuses[store.EpisodeKey{AnimeID: title.ID, EpisodeNumber: episode}]; ok && status.DownloadedAt != nil {
			return true, nil
		}
	}

	// Step 5: nothing proves the file was imported; give up for this tick.
	return false, nil
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
