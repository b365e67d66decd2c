package store

import (
	"context"

	"github.com/slipstream/slipstream/internal/apperr"
)

// AddLog persists one log row. Called asynchronously by the Log Sink.
func (s *Store) AddLog(ctx context.Context, l Log) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO logs (event_type, level, message, details, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		l.EventType, string(l.Level), l.Message, l.Details)
	if err != nil {
		return apperr.New(apperr.Database, "AddLog", err)
	}
	return nil
}

// GetLogs returns a page of logs, most recent first, optionally filtered.
func (s *Store) GetLogs(ctx context.Context, page, pageSize int, filter LogFilter) ([]Log, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	query := `SELECT id, event_type, level, message, details, created_at FROM logs WHERE 1=1`
	var args []any
	if filter.Level != "" {
		query += ` AND level = ?`
		args = append(args, string(filter.Level))
	}
	if filter.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, filter.EventType)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetLogs", err)
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		var l Log
		var level string
		if err := rows.Scan(&l.ID, &l.EventType, &level, &l.Message, &l.Details, &l.CreatedAt); err != nil {
			return nil, apperr.New(apperr.Database, "GetLogs", err)
		}
		l.Level = LogLevel(level)
		out = append(out, l)
	}
	return out, rows.Err()
}

// PruneLogs deletes log rows older than the given number of days.
func (s *Store) PruneLogs(ctx context.Context, olderThanDays int) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM logs WHERE created_at < datetime('now', printf('-%d days', ?))`, olderThanDays)
	if err != nil {
		return 0, apperr.New(apperr.Database, "PruneLogs", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
