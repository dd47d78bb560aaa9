package services

import (
	"errors"
	"fmt"
	"strings"
)

// Environmental markers. A run that hits one of these aborts.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoBatchFound    = errors.New("no batch found")
	ErrManifestMissing = errors.New("manifest missing")
	ErrConfiguration   = errors.New("configuration error")
	ErrExternalTool    = errors.New("external tool error")
	ErrNotFound        = errors.New("not found")
	ErrImportRunning   = errors.New("import already running")
)

// Row and clip markers. These are recorded in the run report and the run
// continues with the next row, clip, or document.
var (
	ErrBadManifestRow      = errors.New("bad manifest row")
	ErrBadLanguage         = fmt.Errorf("%w: unsupported language", ErrBadManifestRow)
	ErrProbeFailed         = errors.New("probe failed")
	ErrNotAMediaRecord     = errors.New("not a media document")
	ErrSaveRejected        = errors.New("save rejected")
	ErrLinkInsertionFailed = errors.New("link insertion failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort the whole import instead of being
// recorded against a single row or document.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNoBatchFound),
		errors.Is(err, ErrManifestMissing),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrImportRunning):
		return true
	}
	return false
}

// Kind returns a short label for the marker carried by err, used as the
// event_type on log lines.
func Kind(err error) string {
	kinds := []struct {
		marker error
		label  string
	}{
		{ErrUnauthorized, "unauthorized"},
		{ErrNoBatchFound, "no_batch_found"},
		{ErrManifestMissing, "manifest_missing"},
		{ErrConfiguration, "configuration"},
		{ErrImportRunning, "import_running"},
		{ErrBadLanguage, "bad_language"},
		{ErrBadManifestRow, "bad_manifest_row"},
		{ErrProbeFailed, "probe_failed"},
		{ErrNotAMediaRecord, "not_a_media_record"},
		{ErrSaveRejected, "save_rejected"},
		{ErrLinkInsertionFailed, "link_insertion_failed"},
		{ErrNotFound, "not_found"},
		{ErrExternalTool, "external_tool"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.label
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
