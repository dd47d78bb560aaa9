package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"glossaudio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The drop directory is created empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DropDir = filepath.Join(base, "drop")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Database = filepath.Join(base, "cdr.db")
	cfgVal.Session.User = "tester"
	cfgVal.Server.Bind = "127.0.0.1:0"
	if err := os.MkdirAll(cfgVal.Paths.DropDir, 0o755); err != nil {
		t.Fatalf("mkdir drop dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithUser sets the session account.
func WithUser(user string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Session.User = user
	}
}

// WithProbeBackend selects the duration probe backend.
func WithProbeBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Probe.Backend = backend
	}
}

// WithSkipLinked turns on skipping of already linked glossary documents.
func WithSkipLinked() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.SkipLinked = true
	}
}

// WithTrustedUserHeader lets the web server take the account from the user header.
func WithTrustedUserHeader() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.TrustUserHeader = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffprobe is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
