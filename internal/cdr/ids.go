package cdr

import (
	"fmt"
	"strconv"
	"strings"
)

// Namespace is the CDR XML namespace carried by cdr:ref and cdr:id attributes.
const Namespace = "cips.nci.nih.gov/cdr"

// FormatID renders the short form used in reports and log lines ("CDR501").
func FormatID(id int) string {
	return fmt.Sprintf("CDR%d", id)
}

// FormatRef renders the zero-padded form stored in cdr:ref attributes ("CDR0000000501").
func FormatRef(id int) string {
	return fmt.Sprintf("CDR%010d", id)
}

// ParseID accepts "CDR0000000501", "CDR501", "cdr501", or "501" and returns 501.
// Fragment suffixes such as "CDR501#_12" are ignored.
func ParseID(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if idx := strings.IndexByte(trimmed, '#'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if len(trimmed) >= 3 && strings.EqualFold(trimmed[:3], "CDR") {
		trimmed = trimmed[3:]
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid CDR id %q", value)
	}
	return id, nil
}
