package preflight

import (
	"context"

	"glossaudio/internal/cdrstore"
	"glossaudio/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Drop directory", cfg.Paths.DropDir, false),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, true),
	}

	store, err := cdrstore.OpenPath(cfg.Paths.Database)
	if err != nil {
		results = append(results, Result{Name: "Database", Detail: err.Error()})
	} else {
		defer store.Close()
		results = append(results, Result{Name: "Database", Passed: true, Detail: cfg.Paths.Database})
		results = append(results, CheckPermissions(ctx, store.ForUser(cfg.Session.User)))
	}

	results = append(results, CheckBatch(cfg.Paths.DropDir))
	results = append(results, CheckFFprobe(cfg))
	return results
}

// Failed reports whether any check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
