package deps

import (
	"os"
	"path/filepath"
	"strings"
)

// FFprobe describes the ffprobe requirement. It is optional unless the
// ffprobe duration backend is selected.
func FFprobe(command string, required bool) Requirement {
	return Requirement{
		Name:        "FFprobe",
		Command:     strings.TrimSpace(command),
		Description: "Measures clip durations when probe.backend is ffprobe",
		Optional:    !required,
	}
}

// CheckFFprobe resolves the configured ffprobe binary. Paths are checked
// directly; bare names go through PATH.
func CheckFFprobe(command string, required bool) Status {
	req := FFprobe(command, required)
	if !strings.ContainsRune(req.Command, filepath.Separator) {
		return check(req)
	}
	status := Status{
		Name:        req.Name,
		Command:     req.Command,
		Description: req.Description,
		Optional:    req.Optional,
	}
	info, err := os.Stat(req.Command)
	switch {
	case err != nil:
		status.Detail = "binary not found at " + req.Command
	case !isExecutable(info):
		status.Detail = req.Command + " is not executable"
	default:
		status.Path = req.Command
		status.Available = true
	}
	return status
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
