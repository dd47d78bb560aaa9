package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"glossaudio/internal/logging"
	"glossaudio/internal/services"
)

var keyPattern = regexp.MustCompile(`(?i)^week_\d{4}_\d\d`)

// Key returns the uppercased batch key of an archive name, or "" when the
// name is not a candidate archive.
func Key(name string) string {
	if !strings.EqualFold(filepath.Ext(name), ".zip") {
		return ""
	}
	match := keyPattern.FindString(name)
	return strings.ToUpper(match)
}

// Selector finds archive batches in one drop directory.
type Selector struct {
	dir    string
	logger *slog.Logger
}

// NewSelector returns a selector for dir. A nil logger discards output.
func NewSelector(dir string, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{dir: dir, logger: logger}
}

// Dir returns the drop directory.
func (s *Selector) Dir() string {
	return s.dir
}

// Select returns the names of the newest batch, ordered for processing.
func (s *Selector) Select() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "read drop dir", s.dir, err)
	}

	groups := make(map[string][]string)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		key := Key(name)
		if key == "" {
			s.logger.Warn("ignoring file in drop directory",
				logging.String("file", name),
				logging.String(logging.FieldEventType, "archive_ignored"),
			)
			continue
		}
		groups[key] = append(groups[key], name)
	}
	if len(groups) == 0 {
		return nil, services.Wrap(services.ErrNoBatchFound, "batch", "select", fmt.Sprintf("no Week_YYYY_WW archives in %s", s.dir), nil)
	}

	latest := ""
	for key := range groups {
		if key > latest {
			latest = key
		}
	}
	names := groups[latest]
	sortNames(names)

	s.logger.Info("batch selected",
		logging.String("batch_key", latest),
		logging.Strings("archives", names),
		logging.Int("ignored_batches", len(groups)-1),
	)
	return names, nil
}

// Validate checks an explicitly supplied archive list, used when an operator
// asks a developer to rerun a specific set. Every name must be a candidate
// archive present in the drop directory. The given order is preserved.
func (s *Selector) Validate(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, services.Wrap(services.ErrNoBatchFound, "batch", "validate", "empty archive list", nil)
	}
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name != filepath.Base(name) {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "validate", fmt.Sprintf("%q is not a plain file name", raw), nil)
		}
		if Key(name) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "validate", fmt.Sprintf("%q does not match Week_YYYY_WW*.zip", raw), nil)
		}
		info, err := os.Stat(filepath.Join(s.dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, services.Wrap(services.ErrNotFound, "batch", "validate", name, nil)
			}
			return nil, services.Wrap(services.ErrConfiguration, "batch", "validate", name, err)
		}
		if !info.Mode().IsRegular() {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "validate", fmt.Sprintf("%s is not a regular file", name), nil)
		}
		out = append(out, name)
	}
	return out, nil
}

// Path joins an archive name onto the drop directory.
func (s *Selector) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func sortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToUpper(names[i]) < strings.ToUpper(names[j])
	})
}
