package cdrstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting returns the most recent active ctl value for (group, name).
func (s *Store) Setting(ctx context.Context, group, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT val FROM ctl
          WHERE grp = ? AND name = ? AND inactivated IS NULL
          ORDER BY created DESC, rowid DESC LIMIT 1`,
		group, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read ctl %s/%s: %w", group, name, err)
	}
	return value, true, nil
}

// SetSetting inactivates any active value for (group, name) and records value.
func (s *Store) SetSetting(ctx context.Context, group, name, value string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.timestamp()
		if _, err := tx.ExecContext(ctx,
			`UPDATE ctl SET inactivated = ? WHERE grp = ? AND name = ? AND inactivated IS NULL`,
			now, group, name,
		); err != nil {
			return fmt.Errorf("inactivate ctl %s/%s: %w", group, name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ctl (grp, name, val, created) VALUES (?, ?, ?, ?)`,
			group, name, value, now,
		); err != nil {
			return fmt.Errorf("insert ctl %s/%s: %w", group, name, err)
		}
		return nil
	})
}

// ClearSetting inactivates every active value for (group, name).
func (s *Store) ClearSetting(ctx context.Context, group, name string) error {
	return s.execWithRetry(ctx,
		`UPDATE ctl SET inactivated = ? WHERE grp = ? AND name = ? AND inactivated IS NULL`,
		s.timestamp(), group, name,
	)
}
