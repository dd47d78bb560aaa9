package manifest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
	"glossaudio/internal/services"
)

// Manifest column positions. Column 3 carries the vendor's pronunciation
// spelling and is not used.
const (
	colDocID = iota
	colTermName
	colLanguage
	colReserved
	colFilename
	colCreator
	colNotes
	colMediaID
)

// Row is a validated manifest data row.
type Row struct {
	// Number is the 1-based worksheet row.
	Number   int
	DocID    int
	TermName string
	Language clip.Language
	Filename string
	Creator  string
	Notes    string
	// MediaID is the existing Media document to update, or zero.
	MediaID int
}

// IsDataRow reports whether the first cell holds a finite number, which is
// what distinguishes data rows from headers and blank lines.
func IsDataRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(cells[colDocID]), 64)
	return err == nil && !math.IsNaN(value) && !math.IsInf(value, 0)
}

// ParseRow validates the cells of a data row.
func ParseRow(number int, cells []string) (Row, error) {
	row := Row{Number: number}
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	id, err := parseDocID(cell(colDocID))
	if err != nil {
		return row, err
	}
	row.DocID = id

	if row.TermName = cell(colTermName); row.TermName == "" {
		return row, fmt.Errorf("%w: missing term name", services.ErrBadManifestRow)
	}
	if row.Language, err = clip.ParseLanguage(cell(colLanguage)); err != nil {
		return row, err
	}
	if row.Filename = cell(colFilename); row.Filename == "" {
		return row, fmt.Errorf("%w: missing clip filename", services.ErrBadManifestRow)
	}
	row.Creator = cell(colCreator)
	row.Notes = cell(colNotes)

	if raw := cell(colMediaID); raw != "" {
		mediaID, err := parseOptionalID(raw)
		if err != nil {
			return row, err
		}
		row.MediaID = mediaID
	}
	return row, nil
}

func parseDocID(raw string) (int, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value != math.Trunc(value) || value <= 0 || value > math.MaxInt32 {
		return 0, fmt.Errorf("%w: invalid document id %q", services.ErrBadManifestRow, raw)
	}
	return int(value), nil
}

func parseOptionalID(raw string) (int, error) {
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		if value != math.Trunc(value) || value <= 0 || value > math.MaxInt32 {
			return 0, fmt.Errorf("%w: invalid media id %q", services.ErrBadManifestRow, raw)
		}
		return int(value), nil
	}
	id, err := cdr.ParseID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid media id %q", services.ErrBadManifestRow, raw)
	}
	return id, nil
}

// RowError records why one manifest row produced no clip.
type RowError struct {
	Archive string
	Row     int
	DocID   int
	Err     error
}

func (e *RowError) Error() string {
	if e.DocID > 0 {
		return fmt.Sprintf("%s row %d (%s): %v", e.Archive, e.Row, cdr.FormatID(e.DocID), e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.Archive, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
