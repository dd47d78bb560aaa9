package cdrstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"glossaudio/internal/cdr"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// docTypes are registered on every open. GlossaryTermConcept is never
// written by the import but glossary names point at it.
var docTypes = []string{cdr.DocTypeMedia, cdr.DocTypeGlossaryTermName, "GlossaryTermConcept"}

// ErrSchemaMismatch reports a database written by a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	version, err := s.storedVersion(ctx)
	if err != nil {
		return err
	}
	switch version {
	case 0:
		if err := s.createSchema(ctx); err != nil {
			return err
		}
	case schemaVersion:
	default:
		return fmt.Errorf("%w: %s has version %d, expected %d (move it aside and run 'glossaudio db init')",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return s.registerDocTypes(ctx)
}

// storedVersion returns zero for a database without a schema.
func (s *Store) storedVersion(ctx context.Context) (int, error) {
	var tables int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tables); err != nil {
		return 0, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	})
}

func (s *Store) registerDocTypes(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, name := range docTypes {
			if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO doc_type (name) VALUES (?)", name); err != nil {
				return fmt.Errorf("register doc type %s: %w", name, err)
			}
		}
		return nil
	})
}
