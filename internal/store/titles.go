package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/slipstream/slipstream/internal/apperr"
)

func scanTitle(row interface{ Scan(...any) error }) (Title, error) {
	var t Title
	var episodeCount sql.NullInt64
	var qualityProfileID sql.NullInt64
	var releaseProfileIDs string
	var addedAt time.Time

	err := row.Scan(
		&t.ID, &t.RomajiTitle, &t.EnglishTitle, &t.NativeTitle, &t.Format,
		&episodeCount, &t.Status, &qualityProfileID, &releaseProfileIDs,
		&t.Monitored, &t.Path, &t.CoverImage, &t.BannerImage, &t.Description,
		&addedAt,
	)
	if err != nil {
		return Title{}, err
	}
	if episodeCount.Valid {
		n := int(episodeCount.Int64)
		t.EpisodeCount = &n
	}
	if qualityProfileID.Valid {
		t.QualityProfileID = &qualityProfileID.Int64
	}
	_ = json.Unmarshal([]byte(releaseProfileIDs), &t.ReleaseProfileIDs)
	t.AddedAt = addedAt
	return t, nil
}

const titleColumns = `id, romaji_title, english_title, native_title, format,
	episode_count, status, quality_profile_id, release_profile_ids,
	monitored, path, cover_image, banner_image, description, added_at`

// GetAnime returns a title by ID, or apperr.NotFound if it doesn't exist.
func (s *Store) GetAnime(ctx context.Context, id int64) (Title, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+titleColumns+` FROM titles WHERE id = ?`, id)
	t, err := scanTitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Title{}, apperr.New(apperr.NotFound, "GetAnime", err)
	}
	if err != nil {
		return Title{}, apperr.New(apperr.Database, "GetAnime", err)
	}
	return t, nil
}

// ListMonitored returns every monitored title.
func (s *Store) ListMonitored(ctx context.Context) ([]Title, error) {
	return s.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles WHERE monitored = 1 ORDER BY id`)
}

// ListAll returns every tracked title.
func (s *Store) ListAll(ctx context.Context) ([]Title, error) {
	return s.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles ORDER BY id`)
}

func (s *Store) queryTitles(ctx context.Context, query string, args ...any) ([]Title, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "queryTitles", err)
	}
	defer rows.Close()

	var out []Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, apperr.New(apperr.Database, "queryTitles", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertTitle inserts or fully replaces a title row.
func (s *Store) UpsertTitle(ctx context.Context, t Title) error {
	profileIDs, err := json.Marshal(t.ReleaseProfileIDs)
	if err != nil {
		return apperr.New(apperr.Validation, "UpsertTitle", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO titles (id, romaji_title, english_title, native_title, format,
			episode_count, status, quality_profile_id, release_profile_ids,
			monitored, path, cover_image, banner_image, description, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			romaji_title = excluded.romaji_title,
			english_title = excluded.english_title,
			native_title = excluded.native_title,
			format = excluded.format,
			episode_count = excluded.episode_count,
			status = excluded.status,
			quality_profile_id = excluded.quality_profile_id,
			release_profile_ids = excluded.release_profile_ids,
			monitored = excluded.monitored,
			path = excluded.path,
			cover_image = excluded.cover_image,
			banner_image = excluded.banner_image,
			description = excluded.description`,
		t.ID, t.RomajiTitle, t.EnglishTitle, t.NativeTitle, t.Format,
		t.EpisodeCount, t.Status, t.QualityProfileID, string(profileIDs),
		t.Monitored, t.Path, t.CoverImage, t.BannerImage, t.Description, t.AddedAt)
	if err != nil {
		return apperr.New(apperr.Database, "UpsertTitle", err)
	}
	return nil
}

// GetTitlesByIDs batches a per-id title fetch for the Completion Monitor's
// import loop, which otherwise risks an N+1 query per completed torrent.
func (s *Store) GetTitlesByIDs(ctx context.Context, ids []int64) (map[int64]Title, error) {
	out := make(map[int64]Title, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]any, len(ids))
	query := `SELECT ` + titleColumns + ` FROM titles WHERE id IN (`
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ")"

	rows, err := s.conn.QueryContext(ctx, query, placeholders...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetTitlesByIDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, apperr.New(apperr.Database, "GetTitlesByIDs", err)
		}
		out[t.ID] = t
	}
	return out, rows.Err()
}

// DeleteAnime removes a title and cascades into every owned row (episode
// status, history, feeds, seadex cache, recycle entries) via FK ON DELETE
// CASCADE, as required by §3's lifecycle invariant.
func (s *Store) DeleteAnime(ctx context.Context, id int64) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, id); err != nil {
		return apperr.New(apperr.Database, "DeleteAnime", err)
	}
	return nil
}

// GetDownloadCountsForAnimeIDs batches a per-title imported-episode count to
// avoid N+1 queries from callers that render a title list.
func (s *Store) GetDownloadCountsForAnimeIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]any, len(ids))
	query := `SELECT anime_id, COUNT(*) FROM episode_status WHERE file_path != '' AND anime_id IN (`
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ") GROUP BY anime_id"

	rows, err := s.conn.QueryContext(ctx, query, placeholders...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetDownloadCountsForAnimeIDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, apperr.New(apperr.Database, "GetDownloadCountsForAnimeIDs", err)
		}
		out[id] = count
	}
	return out, rows.Err()
}
