package main

import (
	"testing"

	"glossaudio/internal/testsupport"
)

func TestPreflightPassesWithBatchAndGrants(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.GrantImport(t, env.store)
	testsupport.WriteWeekArchive(t, env.cfg.Paths.DropDir, "Week_2024_10.zip")

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath, "")
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "Permissions")
	requireContains(t, out, "(1 archives)")
}

func TestPreflightFailsWithoutBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.GrantImport(t, env.store)

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected preflight failure with empty drop directory")
	}
	requireContains(t, out, "Batch")
}
