package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/slipstream/slipstream/internal/apperr"
)

const episodeStatusColumns = `anime_id, episode_number, season, monitored,
	quality_id, is_seadex, file_path, file_size, downloaded_at,
	media_resolution, media_codec, media_audio_codecs, media_duration`

func scanEpisodeStatus(row interface{ Scan(...any) error }) (EpisodeStatus, error) {
	var e EpisodeStatus
	var qualityID sql.NullString
	var fileSize sql.NullInt64
	var downloadedAt sql.NullTime
	var resolution, codec, audioCodecsJSON sql.NullString
	var duration sql.NullInt64

	err := row.Scan(
		&e.AnimeID, &e.EpisodeNumber, &e.Season, &e.Monitored,
		&qualityID, &e.IsSeadex, &e.FilePath, &fileSize, &downloadedAt,
		&resolution, &codec, &audioCodecsJSON, &duration,
	)
	if err != nil {
		return EpisodeStatus{}, err
	}
	if qualityID.Valid {
		e.QualityID = &qualityID.String
	}
	if fileSize.Valid {
		e.FileSize = &fileSize.Int64
	}
	if downloadedAt.Valid {
		e.DownloadedAt = &downloadedAt.Time
	}
	if resolution.Valid || codec.Valid || audioCodecsJSON.Valid || duration.Valid {
		mi := &MediaInfo{Resolution: resolution.String, Codec: codec.String, Duration: int(duration.Int64)}
		if audioCodecsJSON.Valid {
			_ = json.Unmarshal([]byte(audioCodecsJSON.String), &mi.AudioCodecs)
		}
		e.MediaInfo = mi
	}
	return e, nil
}

// GetEpisodeStatuses returns every tracked episode status for a title.
func (s *Store) GetEpisodeStatuses(ctx context.Context, animeID int64) ([]EpisodeStatus, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+episodeStatusColumns+` FROM episode_status WHERE anime_id = ? ORDER BY episode_number`, animeID)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetEpisodeStatuses", err)
	}
	defer rows.Close()

	var out []EpisodeStatus
	for rows.Next() {
		e, err := scanEpisodeStatus(rows)
		if err != nil {
			return nil, apperr.New(apperr.Database, "GetEpisodeStatuses", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EpisodeKey identifies one (anime, episode) pair.
type EpisodeKey struct {
	AnimeID       int64
	EpisodeNumber int
}

// GetEpisodeStatusesBatch resolves many (anime, episode) pairs in one
// query, avoiding the N+1 pattern the Completion Monitor would otherwise
// hit per torrent.
func (s *Store) GetEpisodeStatusesBatch(ctx context.Context, pairs []EpisodeKey) (map[EpisodeKey]EpisodeStatus, error) {
	out := make(map[EpisodeKey]EpisodeStatus, len(pairs))
	if len(pairs) == 0 {
		return out, nil
	}

	query := `SELECT ` + episodeStatusColumns + ` FROM episode_status WHERE `
	args := make([]any, 0, len(pairs)*2)
	for i, p := range pairs {
		if i > 0 {
			query += " OR "
		}
		query += "(anime_id = ? AND episode_number = ?)"
		args = append(args, p.AnimeID, p.EpisodeNumber)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetEpisodeStatusesBatch", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEpisodeStatus(rows)
		if err != nil {
			return nil, apperr.New(apperr.Database, "GetEpisodeStatusesBatch", err)
		}
		out[EpisodeKey{e.AnimeID, e.EpisodeNumber}] = e
	}
	return out, rows.Err()
}

// UpsertEpisodeStatus inserts or fully replaces the non-key fields of an
// episode status row. Idempotent under the (anime_id, episode_number) PK.
func (s *Store) UpsertEpisodeStatus(ctx context.Context, e EpisodeStatus) error {
	var audioCodecsJSON, resolution, codec sql.NullString
	var duration sql.NullInt64
	if e.MediaInfo != nil {
		b, _ := json.Marshal(e.MediaInfo.AudioCodecs)
		audioCodecsJSON = sql.NullString{String: string(b), Valid: true}
		resolution = sql.NullString{String: e.MediaInfo.Resolution, Valid: true}
		codec = sql.NullString{String: e.MediaInfo.Codec, Valid: true}
		duration = sql.NullInt64{Int64: int64(e.MediaInfo.Duration), Valid: true}
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO episode_status (anime_id, episode_number, season, monitored,
			quality_id, is_seadex, file_path, file_size, downloaded_at,
			media_resolution, media_codec, media_audio_codecs, media_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (anime_id, episode_number) DO UPDATE SET
			season = excluded.season,
			monitored = excluded.monitored,
			quality_id = excluded.quality_id,
			is_seadex = excluded.is_seadex,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			downloaded_at = excluded.downloaded_at,
			media_resolution = excluded.media_resolution,
			media_codec = excluded.media_codec,
			media_audio_codecs = excluded.media_audio_codecs,
			media_duration = excluded.media_duration`,
		e.AnimeID, e.EpisodeNumber, e.Season, e.Monitored,
		e.QualityID, e.IsSeadex, e.FilePath, e.FileSize, e.DownloadedAt,
		resolution, codec, audioCodecsJSON, duration)
	if err != nil {
		return apperr.New(apperr.Database, "UpsertEpisodeStatus", err)
	}
	return nil
}

// MarkEpisodeDownloaded is a thin wrapper over UpsertEpisodeStatus that also
// stamps downloaded_at = now, per §4.1.
func (s *Store) MarkEpisodeDownloaded(ctx context.Context, animeID int64, episode, season int, qualityID string, isSeadex bool, path string, size *int64, mediaInfo *MediaInfo) error {
	now := time.Now().UTC()
	return s.UpsertEpisodeStatus(ctx, EpisodeStatus{
		AnimeID: animeID, EpisodeNumber: episode, Season: season,
		Monitored: true, QualityID: &qualityID, IsSeadex: isSeadex,
		FilePath: path, FileSize: size, DownloadedAt: &now, MediaInfo: mediaInfo,
	})
}

// ClearEpisodeDownload nulls the on-disk fields of an episode status row.
func (s *Store) ClearEpisodeDownload(ctx context.Context, animeID int64, episode int) error {
	_, err := s.conn.ExecContext(ctx, `
		UPDATE episode_status SET file_path = '', file_size = NULL,
			downloaded_at = NULL, quality_id = NULL, is_seadex = 0
		WHERE anime_id = ? AND episode_number = ?`, animeID, episode)
	if err != nil {
		return apperr.New(apperr.Database, "ClearEpisodeDownload", err)
	}
	return nil
}

// UpdateEpisodePath rewrites only the file_path of an episode status row.
func (s *Store) UpdateEpisodePath(ctx context.Context, animeID int64, episode int, newPath string) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE episode_status SET file_path = ? WHERE anime_id = ? AND episode_number = ?`,
		newPath, animeID, episode)
	if err != nil {
		return apperr.New(apperr.Database, "UpdateEpisodePath", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "UpdateEpisodePath", fmt.Errorf("episode (%d,%d) not found", animeID, episode))
	}
	return nil
}

// GetMissingEpisodes returns {1..total} \ {ep | status(ep).file_path != ""},
// ascending, per §4.1/§8 property 5.
func (s *Store) GetMissingEpisodes(ctx context.Context, animeID int64, total int) ([]int, error) {
	if total <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT episode_number FROM episode_status
		WHERE anime_id = ? AND file_path != '' AND episode_number BETWEEN 1 AND ?`,
		animeID, total)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetMissingEpisodes", err)
	}
	defer rows.Close()

	have := make(map[int]bool)
	for rows.Next() {
		var ep int
		if err := rows.Scan(&ep); err != nil {
			return nil, apperr.New(apperr.Database, "GetMissingEpisodes", err)
		}
		have[ep] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.New(apperr.Database, "GetMissingEpisodes", err)
	}

	missing := make([]int, 0, total)
	for ep := 1; ep <= total; ep++ {
		if !have[ep] {
			missing = append(missing, ep)
		}
	}
	sort.Ints(missing)
	return missing, nil
}

// GetEpisodeMetadata returns the descriptive metadata for one episode.
func (s *Store) GetEpisodeMetadata(ctx context.Context, animeID int64, episode int) (EpisodeMetadata, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT anime_id, episode_number, title, title_japanese, aired, filler, recap, fetched_at
		FROM episode_metadata WHERE anime_id = ? AND episode_number = ?`, animeID, episode)

	var m EpisodeMetadata
	var aired sql.NullTime
	if err := row.Scan(&m.AnimeID, &m.EpisodeNumber, &m.Title, &m.TitleJapanese, &aired, &m.Filler, &m.Recap, &m.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return EpisodeMetadata{}, apperr.New(apperr.NotFound, "GetEpisodeMetadata", err)
		}
		return EpisodeMetadata{}, apperr.New(apperr.Database, "GetEpisodeMetadata", err)
	}
	if aired.Valid {
		m.Aired = &aired.Time
	}
	return m, nil
}

// UpsertEpisodeMetadata writes metadata fetched by the metadata-refresh job.
func (s *Store) UpsertEpisodeMetadata(ctx context.Context, m EpisodeMetadata) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO episode_metadata (anime_id, episode_number, title, title_japanese, aired, filler, recap, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (anime_id, episode_number) DO UPDATE SET
			title = excluded.title, title_japanese = excluded.title_japanese,
			aired = excluded.aired, filler = excluded.filler, recap = excluded.recap,
			fetched_at = excluded.fetched_at`,
		m.AnimeID, m.EpisodeNumber, m.Title, m.TitleJapanese, m.Aired, m.Filler, m.Recap, m.FetchedAt)
	if err != nil {
		return apperr.New(apperr.Database, "UpsertEpisodeMetadata", err)
	}
	return nil
}
