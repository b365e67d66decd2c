package completion

import (
	"fmt"
	"path/filepath"

	"github.com/slipstream/slipstream/internal/import/renamer"
	"github.com/slipstream/slipstream/internal/parser"
	"github.com/slipstream/slipstream/internal/store"
)

// destinationPath implements §4.8.2 step 4: format the destination path
// from the naming template, using title.Path as the series root when set
// (an explicitly-chosen per-title folder overrides the library default).
func (m *Monitor) destinationPath(title store.Title, parsed parser.ParsedRelease, history store.DownloadHistory, episodeTitle string, mediaInfo *store.MediaInfo, sourceFile string) (string, int, int, error) {
	episode := parsed.EpisodeNumberTruncated()
	if episode == 0 {
		episode = history.EpisodeNumberTruncated()
	}
	season := 1
	if parsed.Season != nil {
		season = *parsed.Season
	}

	tc := &renamer.TokenContext{
		SeriesTitle:   firstNonEmpty(title.RomajiTitle, title.EnglishTitle),
		SeriesType:    m.SeriesType,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		EpisodeTitle:  episodeTitle,
		Quality:       parsed.Resolution,
		Source:        parsed.Source,
		ReleaseGroup:  parsed.Group,
		OriginalFile:  filepath.Base(sourceFile),
	}
	if mediaInfo != nil {
		tc.VideoCodec = mediaInfo.Codec
		tc.AudioCodec = joinFirst(mediaInfo.AudioCodecs)
	}

	seriesDir := title.Path
	if seriesDir == "" {
		folder, err := m.resolver.ResolveSeriesFolderName(tc)
		if err != nil {
			return "", 0, 0, fmt.Errorf("resolve series folder: %w", err)
		}
		seriesDir = filepath.Join(m.LibraryRoot, folder)
	}
	seasonDir := m.resolver.ResolveSeasonFolderName(season)

	ext := filepath.Ext(sourceFile)
	filename, err := m.resolver.ResolveEpisodeFilename(tc, ext)
	if err != nil {
		return "", 0, 0, fmt.Errorf("resolve episode filename: %w", err)
	}

	return filepath.Join(seriesDir, seasonDir, filename), episode, season, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinFirst(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func episodeTitleOrFallback(title string, episode int) string {
	if title != "" {
		return title
	}
	return fmt.Sprintf("Episode %d", episode)
}
