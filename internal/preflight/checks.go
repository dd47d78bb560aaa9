package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"glossaudio/internal/batch"
	"glossaudio/internal/cdr"
	"glossaudio/internal/config"
	"glossaudio/internal/deps"
	"glossaudio/internal/pipeline"
)

// CheckDirectoryAccess verifies that the directory exists and is readable,
// and writable too when write is set.
func CheckDirectoryAccess(name, path string, write bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	mode, label := uint32(unix.R_OK|unix.X_OK), "read ok"
	if write {
		mode, label = unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckPermissions verifies the session holds every permission the import needs.
func CheckPermissions(ctx context.Context, session cdr.Session) Result {
	const name = "Permissions"

	user := session.User()
	if user == "" {
		return Result{Name: name, Detail: "no session user configured"}
	}
	var missing []string
	for _, perm := range pipeline.RequiredPermissions {
		ok, err := session.CanDo(ctx, perm.Action, perm.DocType)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("permission lookup failed: %v", err)}
		}
		if !ok {
			missing = append(missing, perm.String())
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s lacks %s", user, strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: user + " may run audio imports"}
}

// CheckBatch reports the batch a run would pick up.
func CheckBatch(dropDir string) Result {
	const name = "Batch"

	names, err := batch.NewSelector(dropDir, nil).Select()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d archives)", batch.Key(names[0]), len(names))}
}

// CheckFFprobe verifies the ffprobe binary when the ffprobe backend is selected.
func CheckFFprobe(cfg *config.Config) Result {
	const name = "FFprobe"

	required := strings.EqualFold(cfg.Probe.Backend, config.ProbeFFprobe)
	status := deps.CheckFFprobe(cfg.FFprobeBinary(), required)
	switch {
	case status.Available:
		return Result{Name: name, Passed: true, Detail: status.Path}
	case status.Optional:
		return Result{Name: name, Passed: true, Detail: "not needed by the native probe (" + status.Detail + ")"}
	default:
		return Result{Name: name, Detail: status.Detail}
	}
}
