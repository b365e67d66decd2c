package completion

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/slipstream/slipstream/internal/eventbus"
	"github.com/slipstream/slipstream/internal/parser"
	"github.com/slipstream/slipstream/internal/store"
)

// importSourcePath dispatches on whether source is a file or a directory,
// per §4.8 step 5: a single file is imported once; a directory is walked
// recursively, filtered to known video extensions, and imported file by
// file in a deterministic (filename-sorted) order. It returns the number
// of files successfully imported.
func (m *Monitor) importSourcePath(ctx context.Context, title store.Title, source string, history store.DownloadHistory) (int, error) {
	info, err := os.Stat(source)
	if err != nil {
		return 0, fmt.Errorf("completion: stat source: %w", err)
	}

	if !info.IsDir() {
		if err := m.importOne(ctx, title, source, history); err != nil {
			return 0, err
		}
		return 1, nil
	}

	var files []string
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if parser.IsVideoFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("completion: walk source directory: %w", err)
	}
	sort.Strings(files)

	imported := 0
	for _, f := range files {
		if err := m.importOne(ctx, title, f, history); err != nil {
			m.logger.Error().Err(err).Str("file", f).Msg("failed to import file")
			continue
		}
		imported++
	}
	return imported, nil
}

// importOne implements §4.8.2's single-file import algorithm.
func (m *Monitor) importOne(ctx context.Context, title store.Title, sourceFile string, history store.DownloadHistory) error {
	parsed, _ := parser.Parse(filepath.Base(sourceFile))

	episode := parsed.EpisodeNumberTruncated()
	if episode == 0 {
		episode = history.EpisodeNumberTruncated()
	}
	season := 1
	if parsed.Season != nil {
		season = *parsed.Season
	}

	episodeTitle := ""
	if meta, err := m.store.GetEpisodeMetadata(ctx, title.ID, episode); err == nil {
		episodeTitle = meta.Title
	}
	episodeTitle = episodeTitleOrFallback(episodeTitle, episode)

	// Step 3: probe media info. A probe failure is non-fatal.
	mediaInfo, probeErr := m.prober.Probe(ctx, sourceFile)
	if probeErr != nil {
		m.logger.Debug().Err(probeErr).Str("file", sourceFile).Msg("media probe failed, continuing without media_info")
		mediaInfo = nil
	}

	// Step 4: format the destination path.
	dest, episode, season, err := m.destinationPath(title, parsed, history, episodeTitle, mediaInfo, sourceFile)
	if err != nil {
		return fmt.Errorf("completion: resolve destination: %w", err)
	}

	// Step 6: execute the configured file operation. Step 5 (create the
	// destination directory) happens inside fileops.Import.
	if err := m.fileops.Import(m.ImportMode, sourceFile, dest); err != nil {
		return fmt.Errorf("completion: import file operation: %w", err)
	}

	// is_seadex is recomputed independently of download-time flagging: a
	// release group match against the title's cached seadex groups.
	isSeadex := false
	if cache, err := m.store.GetSeaDexCache(ctx, title.ID); err == nil {
		for _, g := range cache.Groups {
			if g == parsed.Group {
				isSeadex = true
				break
			}
		}
	}

	var size *int64
	if info, err := os.Stat(dest); err == nil {
		s := info.Size()
		size = &s
	}

	qualityID := parsed.Quality.ID
	if err := m.store.MarkEpisodeDownloaded(ctx, title.ID, episode, season, qualityID, isSeadex, dest, size, mediaInfo); err != nil {
		return fmt.Errorf("completion: mark episode downloaded: %w", err)
	}

	m.bus.Publish(eventbus.New(eventbus.ImportFinished, map[string]any{
		"animeId": title.ID,
		"episode": episode,
		"season":  season,
		"path":    dest,
	}))
	if err := m.store.AddLog(ctx, store.Log{
		EventType: "import",
		Level:     store.LogSuccess,
		Message:   fmt.Sprintf("imported %s episode %d to %s", title.RomajiTitle, episode, dest),
	}); err != nil {
		m.logger.Error().Err(err).Msg("failed to write import log row")
	}

	return nil
}
