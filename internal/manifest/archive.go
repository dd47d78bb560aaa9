package manifest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"

	"glossaudio/internal/clip"
	"glossaudio/internal/logging"
	"glossaudio/internal/media/probe"
	"glossaudio/internal/services"
)

// Archive is an open delivery archive.
type Archive struct {
	name   string
	reader *zip.ReadCloser
	logger *slog.Logger
}

// Open opens the zip archive at archivePath. A nil logger discards output.
func Open(archivePath string, logger *slog.Logger) (*Archive, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "manifest", "open archive", archivePath, err)
	}
	name := filepath.Base(archivePath)
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Archive{
		name:   name,
		reader: reader,
		logger: logger.With(logging.String(logging.FieldArchive, name)),
	}, nil
}

// Name returns the archive's file name.
func (a *Archive) Name() string {
	return a.name
}

// Close releases the archive.
func (a *Archive) Close() error {
	if a == nil || a.reader == nil {
		return nil
	}
	return a.reader.Close()
}

// Manifest returns the member name of the spreadsheet manifest. Resource-fork
// members (paths containing MACOSX) are ignored. When several spreadsheets are
// present the last one wins.
func (a *Archive) Manifest() (string, error) {
	var found []string
	for _, f := range a.reader.File {
		if strings.Contains(f.Name, "MACOSX") || f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".xlsx") {
			found = append(found, f.Name)
		}
	}
	switch len(found) {
	case 0:
		return "", services.Wrap(services.ErrManifestMissing, "manifest", "locate", fmt.Sprintf("no .xlsx manifest in %s", a.name), nil)
	case 1:
		return found[0], nil
	default:
		logging.WarnWithContext(a.logger, "archive holds several manifests; using the last", "manifest_ambiguous",
			logging.Strings("manifests", found),
			logging.String(logging.FieldErrorHint, "confirm with the vendor which spreadsheet is current"),
		)
		return found[len(found)-1], nil
	}
}

// Rows returns the worksheet rows of the manifest, as formatted cell text.
func (a *Archive) Rows() ([][]string, error) {
	name, err := a.Manifest()
	if err != nil {
		return nil, err
	}
	data, err := a.read(a.lookup(name))
	if err != nil {
		return nil, services.Wrap(services.ErrManifestMissing, "manifest", "read", name, err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrManifestMissing, "manifest", "open workbook", name, err)
	}
	defer book.Close()

	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, services.Wrap(services.ErrManifestMissing, "manifest", "read sheet", sheet, err)
	}
	a.logger.Debug("manifest loaded",
		logging.String("manifest", name),
		logging.String("sheet", sheet),
		logging.Int("rows", len(rows)),
	)
	return rows, nil
}

// Clips calls fn once per data row, top to bottom. Rows that fail produce a
// nil clip and a *RowError. Returning an error from fn stops iteration and
// Clips returns that error.
func (a *Archive) Clips(ctx context.Context, prober probe.Prober, fn func(*clip.AudioClip, error) error) error {
	rows, err := a.Rows()
	if err != nil {
		return err
	}

	filenames := make(map[string]int)
	keys := make(map[clip.Key]int)
	for i, cells := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !IsDataRow(cells) {
			continue
		}
		number := i + 1
		c, err := a.buildClip(ctx, prober, number, cells)
		if err != nil {
			if cbErr := fn(nil, err); cbErr != nil {
				return cbErr
			}
			continue
		}

		lower := strings.ToLower(c.Filename)
		if prev, ok := filenames[lower]; ok {
			logging.WarnWithContext(a.logger, "duplicate clip filename in manifest", "manifest_duplicate_file",
				logging.String("filename", c.Filename),
				logging.Int("row", number),
				logging.Int("first_row", prev),
			)
		} else {
			filenames[lower] = number
		}
		if prev, ok := keys[c.Key()]; ok {
			logging.WarnWithContext(a.logger, "duplicate term name in manifest", "manifest_duplicate_term",
				logging.String("term", c.Key().String()),
				logging.Int("row", number),
				logging.Int("first_row", prev),
			)
		} else {
			keys[c.Key()] = number
		}

		if err := fn(c, nil); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) buildClip(ctx context.Context, prober probe.Prober, number int, cells []string) (*clip.AudioClip, error) {
	row, err := ParseRow(number, cells)
	if err != nil {
		return nil, &RowError{Archive: a.name, Row: number, DocID: row.DocID, Err: err}
	}
	fail := func(err error) error {
		return &RowError{Archive: a.name, Row: number, DocID: row.DocID, Err: err}
	}

	entry := a.lookup(row.Filename)
	if entry == nil {
		return nil, fail(fmt.Errorf("%w: clip %q not found in archive", services.ErrBadManifestRow, row.Filename))
	}
	data, err := a.read(entry)
	if err != nil {
		return nil, fail(fmt.Errorf("%w: read clip %q: %v", services.ErrBadManifestRow, row.Filename, err))
	}
	duration, err := prober.Duration(ctx, data)
	if err != nil {
		return nil, fail(fmt.Errorf("%w: %s: %w", services.ErrProbeFailed, row.Filename, err))
	}

	a.logger.Debug("clip read",
		logging.Int(logging.FieldDocID, row.DocID),
		logging.String("filename", row.Filename),
		logging.Bytes("size", len(data)),
		logging.Int("seconds", duration),
	)
	return &clip.AudioClip{
		DocID:    row.DocID,
		TermName: row.TermName,
		Language: row.Language,
		Filename: row.Filename,
		Bytes:    data,
		Duration: duration,
		Created:  entryDate(entry),
		Archive:  a.name,
		MediaID:  row.MediaID,
		Creator:  row.Creator,
		Notes:    row.Notes,
		Row:      number,
	}, nil
}

// lookup finds a member by exact name, then case-insensitively, then by a
// unique base-name match for manifests that omit the folder prefix.
func (a *Archive) lookup(name string) *zip.File {
	var folded, based []*zip.File
	for _, f := range a.reader.File {
		if f.Name == name {
			return f
		}
		if strings.Contains(f.Name, "MACOSX") {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			folded = append(folded, f)
		} else if strings.EqualFold(path.Base(f.Name), name) {
			based = append(based, f)
		}
	}
	if len(folded) > 0 {
		return folded[0]
	}
	if len(based) == 1 {
		return based[0]
	}
	return nil
}

func (a *Archive) read(f *zip.File) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("member not found")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func entryDate(f *zip.File) string {
	return f.Modified.Format("2006-01-02")
}
