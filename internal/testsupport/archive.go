package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
)

// DefaultEntryTime is the timestamp stamped on generated archive entries.
var DefaultEntryTime = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

// ManifestHeader is the header row the vendor spreadsheet carries.
var ManifestHeader = []any{"CDR ID", "Term Name", "Language", "Pronunciation", "Filename", "Creator", "Notes", "Media ID"}

// ManifestEntry is one spreadsheet row plus how its clip is packaged.
type ManifestEntry struct {
	DocID    any
	Term     string
	Language string
	Filename string
	Creator  string
	Notes    string
	MediaID  int

	// Frames is the clip length in MP3 frames; zero means DefaultFrames.
	Frames int
	// Clip overrides the generated clip bytes when non-nil.
	Clip []byte
	// NoClip leaves the clip out of the archive.
	NoClip bool
}

// Cells renders the row in manifest column order.
func (e ManifestEntry) Cells() []any {
	var mediaID any = ""
	if e.MediaID > 0 {
		mediaID = e.MediaID
	}
	return []any{e.DocID, e.Term, e.Language, "", e.Filename, e.Creator, e.Notes, mediaID}
}

// ZipEntry is one member of a generated archive.
type ZipEntry struct {
	Name     string
	Data     []byte
	Modified time.Time
}

// ManifestXLSX renders rows into a single-sheet workbook.
func ManifestXLSX(t testing.TB, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// ArchiveBytes builds a zip holding entries.
func ArchiveBytes(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, entry := range entries {
		modified := entry.Modified
		if modified.IsZero() {
			modified = DefaultEntryTime
		}
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entry.Name, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			t.Fatalf("write zip entry %s: %v", entry.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes a zip holding entries to dir/name and returns its path.
func WriteArchive(t testing.TB, dir, name string, entries ...ZipEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ArchiveBytes(t, entries...), 0o644); err != nil {
		t.Fatalf("write archive %s: %v", path, err)
	}
	return path
}

// WriteWeekArchive writes an archive laid out the way the vendor delivers
// them: the manifest inside a folder named after the archive, plus one MP3
// member per row filename stored under that exact member name.
func WriteWeekArchive(t testing.TB, dir, name string, rows ...ManifestEntry) string {
	t.Helper()

	folder := strings.TrimSuffix(name, filepath.Ext(name))
	cells := [][]any{ManifestHeader}
	for _, row := range rows {
		cells = append(cells, row.Cells())
	}
	entries := []ZipEntry{{Name: folder + "/" + folder + ".xlsx", Data: ManifestXLSX(t, cells...)}}

	seen := make(map[string]bool)
	for _, row := range rows {
		if row.NoClip || row.Filename == "" || seen[row.Filename] {
			continue
		}
		seen[row.Filename] = true
		data := row.Clip
		if data == nil {
			frames := row.Frames
			if frames == 0 {
				frames = DefaultFrames
			}
			data = MP3Frames(frames)
		}
		entries = append(entries, ZipEntry{Name: row.Filename, Data: data})
	}
	return WriteArchive(t, dir, name, entries...)
}

// WriteFile fills the target path with data, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
