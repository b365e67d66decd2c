package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/slipstream/slipstream/internal/apperr"
)

// GetSeaDexCache returns the cached seadex recommendation for a title.
func (s *Store) GetSeaDexCache(ctx context.Context, animeID int64) (SeaDexCache, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT anime_id, groups, best_release, releases, fetched_at FROM seadex_cache WHERE anime_id = ?`, animeID)

	var c SeaDexCache
	var groupsJSON, releasesJSON string
	var bestReleaseJSON sql.NullString
	if err := row.Scan(&c.AnimeID, &groupsJSON, &bestReleaseJSON, &releasesJSON, &c.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return SeaDexCache{}, apperr.New(apperr.NotFound, "GetSeaDexCache", err)
		}
		return SeaDexCache{}, apperr.New(apperr.Database, "GetSeaDexCache", err)
	}
	_ = json.Unmarshal([]byte(groupsJSON), &c.Groups)
	_ = json.Unmarshal([]byte(releasesJSON), &c.Releases)
	if bestReleaseJSON.Valid && bestReleaseJSON.String != "" {
		var best SeaDexRelease
		if err := json.Unmarshal([]byte(bestReleaseJSON.String), &best); err == nil {
			c.BestRelease = &best
		}
	}
	return c, nil
}

// UpsertSeaDexCache writes a freshly fetched seadex recommendation.
func (s *Store) UpsertSeaDexCache(ctx context.Context, c SeaDexCache) error {
	groupsJSON, _ := json.Marshal(c.Groups)
	releasesJSON, _ := json.Marshal(c.Releases)
	var bestReleaseJSON []byte
	if c.BestRelease != nil {
		bestReleaseJSON, _ = json.Marshal(c.BestRelease)
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO seadex_cache (anime_id, groups, best_release, releases, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (anime_id) DO UPDATE SET
			groups = excluded.groups, best_release = excluded.best_release,
			releases = excluded.releases, fetched_at = excluded.fetched_at`,
		c.AnimeID, string(groupsJSON), string(bestReleaseJSON), string(releasesJSON), c.FetchedAt)
	if err != nil {
		return apperr.New(apperr.Database, "UpsertSeaDexCache", err)
	}
	return nil
}
