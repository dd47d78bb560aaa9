package cdrstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/beevik/etree"
)

type queryTerm struct {
	path  string
	value string
}

// linkTerms collects every cdr:ref attribute with its element path, in the
// form used by the query_term table ("/GlossaryTermName/TermName/MediaLink/MediaID/@cdr:ref").
func linkTerms(root *etree.Element) []queryTerm {
	var out []queryTerm
	var walk func(el *etree.Element, prefix string)
	walk = func(el *etree.Element, prefix string) {
		path := prefix + "/" + el.Tag
		for _, attr := range el.Attr {
			if attr.Space == "cdr" && attr.Key == "ref" {
				out = append(out, queryTerm{path: path + "/@cdr:ref", value: attr.Value})
			}
		}
		for _, child := range el.ChildElements() {
			walk(child, path)
		}
	}
	walk(root, "")
	return out
}

func reindex(ctx context.Context, tx *sql.Tx, id int, xml []byte) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM query_term WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("clear query terms: %w", err)
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(xml); err != nil || tree.Root() == nil {
		// Unvalidated saves may store XML we cannot parse; it simply has no terms.
		return nil
	}
	for _, term := range linkTerms(tree.Root()) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO query_term (doc_id, path, value) VALUES (?, ?, ?)`, id, term.path, term.value,
		); err != nil {
			return fmt.Errorf("insert query term: %w", err)
		}
	}
	return nil
}

// DocsWithPath returns the ids of documents with at least one query term
// whose path matches the SQL LIKE pattern.
func (s *Store) DocsWithPath(ctx context.Context, pathPattern string) (map[int]struct{}, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT doc_id FROM query_term WHERE path LIKE ?`, pathPattern)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	out := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan query term: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
