package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/slipstream/slipstream/internal/apperr"
)

const historyColumns = `id, anime_id, filename, episode_number, release_group, info_hash, download_date, imported`

func scanHistory(row interface{ Scan(...any) error }) (DownloadHistory, error) {
	var h DownloadHistory
	var group, hash sql.NullString
	err := row.Scan(&h.ID, &h.AnimeID, &h.Filename, &h.EpisodeNumber, &group, &hash, &h.DownloadDate, &h.Imported)
	if err != nil {
		return DownloadHistory{}, err
	}
	h.Group = group.String
	h.InfoHash = hash.String
	return h, nil
}

// RecordDownload inserts a history row, accepting filename collisions
// silently (on conflict do nothing), per §4.1/§7/§8 property 6/S6.
func (s *Store) RecordDownload(ctx context.Context, animeID int64, filename string, episodeNumber float64, group, infoHash string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO download_history (anime_id, filename, episode_number, release_group, info_hash, download_date, imported)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, 0)
		ON CONFLICT (filename) DO NOTHING`,
		animeID, filename, episodeNumber, group, infoHash)
	if err != nil {
		return apperr.New(apperr.Database, "RecordDownload", err)
	}
	return nil
}

// SetImported flips a history row's imported flag. Used only to transition
// false → true exactly once per the §3 invariant.
func (s *Store) SetImported(ctx context.Context, historyID int64, imported bool) error {
	_, err := s.conn.ExecContext(ctx, `UPDATE download_history SET imported = ? WHERE id = ?`, imported, historyID)
	if err != nil {
		return apperr.New(apperr.Database, "SetImported", err)
	}
	return nil
}

// GetDownloadByHash returns the history row for a case-insensitive hash match.
func (s *Store) GetDownloadByHash(ctx context.Context, hash string) (DownloadHistory, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM download_history WHERE LOWER(info_hash) = LOWER(?)`, hash)
	h, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return DownloadHistory{}, apperr.New(apperr.NotFound, "GetDownloadByHash", err)
	}
	if err != nil {
		return DownloadHistory{}, apperr.New(apperr.Database, "GetDownloadByHash", err)
	}
	return h, nil
}

// GetDownloadsByHashes batches a hash → history lookup for the Completion
// Monitor's per-tick reconciliation, avoiding N+1 queries.
func (s *Store) GetDownloadsByHashes(ctx context.Context, hashes []string) (map[string]DownloadHistory, error) {
	out := make(map[string]DownloadHistory, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(hashes))
	args := make([]any, len(hashes))
	for i, h := range hashes {
		placeholders[i] = "LOWER(?)"
		args[i] = h
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT `+historyColumns+` FROM download_history WHERE LOWER(info_hash) IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetDownloadsByHashes", err)
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, apperr.New(apperr.Database, "GetDownloadsByHashes", err)
		}
		out[strings.ToLower(h.InfoHash)] = h
	}
	return out, rows.Err()
}

// IsDownloaded reports whether a filename already has a history row.
func (s *Store) IsDownloaded(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM download_history WHERE filename = ?`, filename).Scan(&n)
	if err != nil {
		return false, apperr.New(apperr.Database, "IsDownloaded", err)
	}
	return n > 0, nil
}

// IsBlocked reports whether an info hash is on the blocklist.
func (s *Store) IsBlocked(ctx context.Context, infoHash string) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocklist WHERE LOWER(info_hash) = LOWER(?)`, infoHash).Scan(&n)
	if err != nil {
		return false, apperr.New(apperr.Database, "IsBlocked", err)
	}
	return n > 0, nil
}

// AddToBlocklist rejects future candidates with this hash silently.
func (s *Store) AddToBlocklist(ctx context.Context, infoHash, reason string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO blocklist (info_hash, reason, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (info_hash) DO UPDATE SET reason = excluded.reason`, infoHash, reason)
	if err != nil {
		return apperr.New(apperr.Database, "AddToBlocklist", err)
	}
	return nil
}

// AddRecycleBinEntry records a file moved aside instead of deleted.
func (s *Store) AddRecycleBinEntry(ctx context.Context, r RecycleBin) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO recycle_bin (original_path, recycled_path, anime_id, episode_number, quality_id, file_size, deleted_at, reason)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?)`,
		r.OriginalPath, r.RecycledPath, r.AnimeID, r.EpisodeNumber, r.QualityID, r.FileSize, r.Reason)
	if err != nil {
		return apperr.New(apperr.Database, "AddRecycleBinEntry", err)
	}
	return nil
}

// PruneRecycleBin removes recycle entries older than N days.
func (s *Store) PruneRecycleBin(ctx context.Context, olderThanDays int) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM recycle_bin WHERE deleted_at < datetime('now', printf('-%d days', ?))`, olderThanDays)
	if err != nil {
		return 0, apperr.New(apperr.Database, "PruneRecycleBin", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
