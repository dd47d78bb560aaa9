package main

import (
	"errors"
	"strings"
	"testing"

	"glossaudio/internal/services"
	"glossaudio/internal/testsupport"
)

func seedBatch(t *testing.T, env *cliTestEnv) int {
	t.Helper()
	testsupport.GrantImport(t, env.store)
	docID := testsupport.SeedGlossary(t, env.store, testsupport.GlossaryName{English: "alpha", Spanish: []string{"alfa"}})
	testsupport.WriteWeekArchive(t, env.cfg.Paths.DropDir, "Week_2024_10.zip", testsupport.ManifestEntry{
		DocID: docID, Term: "alpha", Language: "English", Filename: "alpha.mp3",
	})
	return docID
}

func TestPlanListsNewestBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	seedBatch(t, env)
	testsupport.WriteWeekArchive(t, env.cfg.Paths.DropDir, "Week_2024_09.zip")

	out, _, err := runCLI(t, []string{"plan"}, env.configPath, "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "User: tester")
	requireContains(t, out, "Week_2024_10.zip")
	requireContains(t, out, "Confirm to create Media documents")
	if strings.Contains(out, "Week_2024_09.zip") {
		t.Fatalf("older batch should not be listed:\n%s", out)
	}
}

func TestPlanRequiresPermissions(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteWeekArchive(t, env.cfg.Paths.DropDir, "Week_2024_10.zip")

	_, _, err := runCLI(t, []string{"plan"}, env.configPath, "")
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRunWithYesPrintsReport(t *testing.T) {
	env := setupCLITestEnv(t)
	docID := seedBatch(t, env)

	out, _, err := runCLI(t, []string{"run", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processing")
	requireContains(t, out, "alpha [en]")
	requireContains(t, out, "1 created")

	doc := testsupport.MustGet(t, env.store, docID)
	requireContains(t, string(doc.XML), "MediaLink")
}

func TestRunHTMLFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	seedBatch(t, env)

	out, _, err := runCLI(t, []string{"run", "--yes", "--format", "html"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, `<table class="report">`)
}

func TestRunRefusesWithoutConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)
	seedBatch(t, env)

	_, _, err := runCLI(t, []string{"run"}, env.configPath, "y\n")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"run", "--yes", "--format", "pdf"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRunRejectsNonBatchArchiveName(t *testing.T) {
	env := setupCLITestEnv(t)
	seedBatch(t, env)

	_, _, err := runCLI(t, []string{"run", "--yes", "--archive", "notes.txt"}, env.configPath, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a non-batch name, got %v", err)
	}
}

func TestRunValidatesArchivesBeforeConfirming(t *testing.T) {
	env := setupCLITestEnv(t)
	seedBatch(t, env)

	out, _, err := runCLI(t, []string{"run", "--archive", "Week_2024_11.zip"}, env.configPath, "y\n")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an absent archive, got %v", err)
	}
	if strings.Contains(out, "Proceed?") || strings.Contains(out, "Week_2024_11.zip") {
		t.Fatalf("unvalidated archive offered for confirmation:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out strings.Builder
		got, err := confirm(strings.NewReader(tc.input), &out)
		if err != nil {
			t.Fatalf("confirm(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("confirm(%q) = %v, want %v", tc.input, got, tc.want)
		}
		requireContains(t, out.String(), "Proceed?")
	}
}
