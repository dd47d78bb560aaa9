package cdrstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"glossaudio/internal/cdr"
)

// CanDo reports whether the store's user has been granted action on docType.
func (s *Store) CanDo(ctx context.Context, action, docType string) (bool, error) {
	if s.user == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM permission WHERE user_name = ? AND action = ? AND doc_type = ?`,
		s.user, strings.ToUpper(strings.TrimSpace(action)), strings.TrimSpace(docType),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return count > 0, nil
}

// Grant gives user each listed permission. Existing grants are left alone.
func (s *Store) Grant(ctx context.Context, user string, perms ...cdr.Permission) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return fmt.Errorf("grant: user is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range perms {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO permission (user_name, action, doc_type) VALUES (?, ?, ?)`,
				user, strings.ToUpper(strings.TrimSpace(p.Action)), strings.TrimSpace(p.DocType),
			); err != nil {
				return fmt.Errorf("grant %s: %w", p, err)
			}
		}
		return nil
	})
}

// Revoke removes the listed permissions from user.
func (s *Store) Revoke(ctx context.Context, user string, perms ...cdr.Permission) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range perms {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM permission WHERE user_name = ? AND action = ? AND doc_type = ?`,
				strings.TrimSpace(user), strings.ToUpper(strings.TrimSpace(p.Action)), strings.TrimSpace(p.DocType),
			); err != nil {
				return fmt.Errorf("revoke %s: %w", p, err)
			}
		}
		return nil
	})
}
