package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glossaudio/internal/config"
	"glossaudio/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("test", dir, true); !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), false)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f, false); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.GrantImport(t, store)
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip")

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("Failed reported true for a ready environment")
	}
}

func TestRunAll_ReportsMissingPermissionsAndBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, cfg)

	byName := map[string]Result{}
	for _, r := range RunAll(context.Background(), cfg) {
		byName[r.Name] = r
	}
	if r := byName["Permissions"]; r.Passed || !strings.Contains(r.Detail, "AUDIO IMPORT") {
		t.Fatalf("permissions result %+v", r)
	}
	if r := byName["Batch"]; r.Passed {
		t.Fatalf("batch result %+v", r)
	}
}

func TestCheckFFprobeRequiredOnlyForBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Probe.FFprobeBinary = filepath.Join(t.TempDir(), "ffprobe")

	if r := CheckFFprobe(cfg); !r.Passed {
		t.Fatalf("native backend should not need ffprobe: %+v", r)
	}
	cfg.Probe.Backend = config.ProbeFFprobe
	if r := CheckFFprobe(cfg); r.Passed {
		t.Fatalf("ffprobe backend should require the binary: %+v", r)
	}
}

func TestCheckFFprobeFindsStub(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithProbeBackend(config.ProbeFFprobe))
	if r := CheckFFprobe(cfg); !r.Passed {
		t.Fatalf("expected stubbed ffprobe to pass: %+v", r)
	}
}
