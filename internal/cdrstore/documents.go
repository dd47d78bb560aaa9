package cdrstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"glossaudio/internal/cdr"
	"glossaudio/internal/services"
)

// ErrCheckedOut indicates another account holds the document lock.
var ErrCheckedOut = errors.New("document checked out by another user")

// Version describes one saved version of a document.
type Version struct {
	Num         int
	Publishable bool
	Comment     string
	Reason      string
	SavedBy     string
	SavedAt     string
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type docRow struct {
	docType  string
	title    string
	xml      string
	blob     []byte
	lockedBy sql.NullString
}

func loadDoc(ctx context.Context, q querier, id int) (*docRow, error) {
	var row docRow
	err := q.QueryRowContext(ctx,
		`SELECT t.name, d.title, d.xml, d.blob, d.checked_out_by
           FROM document d JOIN doc_type t ON t.id = d.doc_type
          WHERE d.id = ?`, id,
	).Scan(&row.docType, &row.title, &row.xml, &row.blob, &row.lockedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", services.ErrNotFound, cdr.FormatID(id))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cdr.FormatID(id), err)
	}
	return &row, nil
}

func (r *docRow) document(id int) *cdr.Document {
	return &cdr.Document{
		ID:      id,
		DocType: r.docType,
		Title:   r.title,
		XML:     []byte(r.xml),
		Blob:    r.blob,
	}
}

// DocType returns the document type name of id.
func (s *Store) DocType(ctx context.Context, id int) (string, error) {
	row, err := loadDoc(ensureContext(ctx), s.db, id)
	if err != nil {
		return "", err
	}
	return row.docType, nil
}

// Title returns the stored title of id.
func (s *Store) Title(ctx context.Context, id int) (string, error) {
	row, err := loadDoc(ensureContext(ctx), s.db, id)
	if err != nil {
		return "", err
	}
	return row.title, nil
}

// Get returns the current document without taking the lock.
func (s *Store) Get(ctx context.Context, id int) (*cdr.Document, error) {
	row, err := loadDoc(ensureContext(ctx), s.db, id)
	if err != nil {
		return nil, err
	}
	return row.document(id), nil
}

// LockedBy returns the account holding the lock on id, or "" when unlocked.
func (s *Store) LockedBy(ctx context.Context, id int) (string, error) {
	row, err := loadDoc(ensureContext(ctx), s.db, id)
	if err != nil {
		return "", err
	}
	return row.lockedBy.String, nil
}

// CheckOut locks the document for the store's user and returns its current state.
// Checking out a document the same user already holds is allowed.
func (s *Store) CheckOut(ctx context.Context, id int, comment string) (*cdr.Document, error) {
	var doc *cdr.Document
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row, err := loadDoc(ctx, tx, id)
		if err != nil {
			return err
		}
		if row.lockedBy.Valid && row.lockedBy.String != s.user {
			return fmt.Errorf("%w: %s held by %s", ErrCheckedOut, cdr.FormatID(id), row.lockedBy.String)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE document SET checked_out_by = ?, checked_out_at = ?, checkout_note = ? WHERE id = ?`,
			s.user, s.timestamp(), nullableString(comment), id,
		); err != nil {
			return fmt.Errorf("lock %s: %w", cdr.FormatID(id), err)
		}
		doc = row.document(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Create inserts a new document and returns its id. Without opts.Unlock the
// new document stays checked out to the store's user.
func (s *Store) Create(ctx context.Context, doc *cdr.Document, opts cdr.SaveOptions) (int, error) {
	if doc == nil {
		return 0, fmt.Errorf("%w: nil document", services.ErrSaveRejected)
	}
	var id int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		typeID, err := docTypeID(ctx, tx, doc.DocType)
		if err != nil {
			return err
		}
		if opts.Validate {
			if err := validateDocument(ctx, tx, doc.DocType, doc.XML, doc.Blob); err != nil {
				return err
			}
		}
		now := s.timestamp()
		var lockedBy any
		if !opts.Unlock {
			lockedBy = s.user
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO document (doc_type, title, xml, blob, checked_out_by, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			typeID, strings.TrimSpace(doc.Title), string(doc.XML), doc.Blob, lockedBy, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		id = int(newID)
		if opts.Version {
			if err := s.insertVersion(ctx, tx, id, doc.XML, doc.Blob, opts); err != nil {
				return err
			}
		}
		return reindex(ctx, tx, id, doc.XML)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Save stores new content for a document the store's user has checked out.
// Empty XML or a nil Blob keeps the stored value.
func (s *Store) Save(ctx context.Context, doc *cdr.Document, opts cdr.SaveOptions) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", services.ErrSaveRejected)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		row, err := loadDoc(ctx, tx, doc.ID)
		if err != nil {
			return err
		}
		if !row.lockedBy.Valid || row.lockedBy.String != s.user {
			return fmt.Errorf("%w: %s is not checked out by %s", services.ErrSaveRejected, cdr.FormatID(doc.ID), s.user)
		}
		xml := doc.XML
		if len(xml) == 0 {
			xml = []byte(row.xml)
		}
		blob := doc.Blob
		if blob == nil {
			blob = row.blob
		}
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			title = row.title
		}
		if opts.Validate {
			if err := validateDocument(ctx, tx, row.docType, xml, blob); err != nil {
				return err
			}
		}
		var lockedBy any = s.user
		if opts.Unlock {
			lockedBy = nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE document SET title = ?, xml = ?, blob = ?, checked_out_by = ?, updated_at = ? WHERE id = ?`,
			title, string(xml), blob, lockedBy, s.timestamp(), doc.ID,
		); err != nil {
			return fmt.Errorf("update %s: %w", cdr.FormatID(doc.ID), err)
		}
		if opts.Version {
			if err := s.insertVersion(ctx, tx, doc.ID, xml, blob, opts); err != nil {
				return err
			}
		}
		return reindex(ctx, tx, doc.ID, xml)
	})
}

// Unlock releases the store user's lock on id. Unlocking a document that is
// not locked is a no-op.
func (s *Store) Unlock(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		row, err := loadDoc(ctx, tx, id)
		if err != nil {
			return err
		}
		if !row.lockedBy.Valid {
			return nil
		}
		if row.lockedBy.String != s.user {
			return fmt.Errorf("%w: %s held by %s", ErrCheckedOut, cdr.FormatID(id), row.lockedBy.String)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE document SET checked_out_by = NULL, checked_out_at = NULL, checkout_note = NULL WHERE id = ?`, id,
		); err != nil {
			return fmt.Errorf("unlock %s: %w", cdr.FormatID(id), err)
		}
		return nil
	})
}

// Versions lists the saved versions of id, oldest first.
func (s *Store) Versions(ctx context.Context, id int) ([]Version, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT num, publishable, COALESCE(comment, ''), COALESCE(reason, ''), saved_by, saved_at
           FROM doc_version WHERE doc_id = ? ORDER BY num`, id)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var publishable int
		if err := rows.Scan(&v.Num, &publishable, &v.Comment, &v.Reason, &v.SavedBy, &v.SavedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.Publishable = publishable != 0
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) insertVersion(ctx context.Context, tx *sql.Tx, id int, xml, blob []byte, opts cdr.SaveOptions) error {
	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(num), 0) + 1 FROM doc_version WHERE doc_id = ?`, id,
	).Scan(&next); err != nil {
		return fmt.Errorf("next version: %w", err)
	}
	publishable := 0
	if opts.Publishable {
		publishable = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO doc_version (doc_id, num, xml, blob, publishable, comment, reason, saved_by, saved_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, next, string(xml), blob, publishable,
		nullableString(opts.Comment), nullableString(opts.Reason), s.user, s.timestamp(),
	); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func docTypeID(ctx context.Context, q querier, name string) (int, error) {
	var id int
	err := q.QueryRowContext(ctx, `SELECT id FROM doc_type WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: unknown document type %q", services.ErrSaveRejected, name)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup doc type: %w", err)
	}
	return id, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
