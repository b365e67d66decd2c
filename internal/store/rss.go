package store

import (
	"context"
	"database/sql"

	"github.com/slipstream/slipstream/internal/apperr"
)

// CreateFeed inserts a new RSS feed registration and returns its assigned ID.
func (s *Store) CreateFeed(ctx context.Context, f RssFeed) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO rss_feeds (anime_id, url, name, enabled, last_item_hash)
		VALUES (?, ?, ?, ?, ?)`,
		f.AnimeID, f.URL, f.Name, f.Enabled, f.LastItemHash)
	if err != nil {
		return 0, apperr.New(apperr.Database, "CreateFeed", err)
	}
	return res.LastInsertId()
}

// ListEnabledFeeds returns every enabled RSS feed.
func (s *Store) ListEnabledFeeds(ctx context.Context) ([]RssFeed, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, anime_id, url, name, enabled, last_checked, last_item_hash
		FROM rss_feeds WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, apperr.New(apperr.Database, "ListEnabledFeeds", err)
	}
	defer rows.Close()

	var out []RssFeed
	for rows.Next() {
		var f RssFeed
		var lastChecked sql.NullTime
		if err := rows.Scan(&f.ID, &f.AnimeID, &f.URL, &f.Name, &f.Enabled, &lastChecked, &f.LastItemHash); err != nil {
			return nil, apperr.New(apperr.Database, "ListEnabledFeeds", err)
		}
		if lastChecked.Valid {
			f.LastChecked = &lastChecked.Time
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateFeedCursor atomically updates last_checked and last_item_hash,
// per §4.6 step 4.
func (s *Store) UpdateFeedCursor(ctx context.Context, feedID int64, lastItemHash string) error {
	_, err := s.conn.ExecContext(ctx, `
		UPDATE rss_feeds SET last_checked = CURRENT_TIMESTAMP, last_item_hash = ? WHERE id = ?`,
		lastItemHash, feedID)
	if err != nil {
		return apperr.New(apperr.Database, "UpdateFeedCursor", err)
	}
	return nil
}
