package store

import (
	"context"
	"database/sql"

	"github.com/slipstream/slipstream/internal/apperr"
)

// GetQualityProfile returns one profile with its allowed-quality set.
func (s *Store) GetQualityProfile(ctx context.Context, id int64) (QualityProfile, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, cutoff_quality_id, upgrade_allowed, seadex_preferred, min_size, max_size
		FROM quality_profiles WHERE id = ?`, id)

	var p QualityProfile
	var minSize, maxSize sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.CutoffQualityID, &p.UpgradeAllowed, &p.SeadexPreferred, &minSize, &maxSize); err != nil {
		if err == sql.ErrNoRows {
			return QualityProfile{}, apperr.New(apperr.NotFound, "GetQualityProfile", err)
		}
		return QualityProfile{}, apperr.New(apperr.Database, "GetQualityProfile", err)
	}
	if minSize.Valid {
		p.MinSize = &minSize.Int64
	}
	if maxSize.Valid {
		p.MaxSize = &maxSize.Int64
	}

	ids, err := s.allowedQualityIDs(ctx, id)
	if err != nil {
		return QualityProfile{}, err
	}
	p.AllowedQualityIDs = ids
	return p, nil
}

func (s *Store) allowedQualityIDs(ctx context.Context, profileID int64) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT quality_id FROM quality_profile_items WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, apperr.New(apperr.Database, "allowedQualityIDs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.New(apperr.Database, "allowedQualityIDs", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetReleaseProfileRules returns every rule attached to a profile.
func (s *Store) GetReleaseProfileRules(ctx context.Context, profileID int64) ([]ReleaseProfileRule, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, profile_id, term, score, rule_type FROM release_profile_rules WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, apperr.New(apperr.Database, "GetReleaseProfileRules", err)
	}
	defer rows.Close()

	var out []ReleaseProfileRule
	for rows.Next() {
		var r ReleaseProfileRule
		var ruleType string
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Term, &r.Score, &ruleType); err != nil {
			return nil, apperr.New(apperr.Database, "GetReleaseProfileRules", err)
		}
		r.RuleType = RuleType(ruleType)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SyncProfiles transactionally rebuilds quality_profiles and
// quality_profile_items from a full desired-state list, per §4.1.
func (s *Store) SyncProfiles(ctx context.Context, profiles []QualityProfile) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperr.New(apperr.Database, "SyncProfiles", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM quality_profile_items`); err != nil {
		return apperr.New(apperr.Database, "SyncProfiles", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quality_profiles`); err != nil {
		return apperr.New(apperr.Database, "SyncProfiles", err)
	}

	for _, p := range profiles {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO quality_profiles (id, name, cutoff_quality_id, upgrade_allowed, seadex_preferred, min_size, max_size)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.CutoffQualityID, p.UpgradeAllowed, p.SeadexPreferred, p.MinSize, p.MaxSize)
		if err != nil {
			return apperr.New(apperr.Database, "SyncProfiles", err)
		}
		profileID := p.ID
		if profileID == 0 {
			profileID, _ = res.LastInsertId()
		}
		for _, qid := range p.AllowedQualityIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO quality_profile_items (profile_id, quality_id) VALUES (?, ?)`, profileID, qid); err != nil {
				return apperr.New(apperr.Database, "SyncProfiles", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.New(apperr.Database, "SyncProfiles", err)
	}
	return nil
}
