package services_test

import (
	"errors"
	"strings"
	"testing"

	"glossaudio/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSaveRejected, "record", "save", "CDR7001", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSaveRejected) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"record", "save", "CDR7001"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"unauthorized", services.Wrap(services.ErrUnauthorized, "plan", "permissions", "AUDIO IMPORT", nil), true},
		{"no batch", services.ErrNoBatchFound, true},
		{"manifest", services.Wrap(services.ErrManifestMissing, "read", "", "Week_2024_10.zip", nil), true},
		{"running", services.ErrImportRunning, true},
		{"bad row", services.ErrBadManifestRow, false},
		{"bad language", services.ErrBadLanguage, false},
		{"probe", services.ErrProbeFailed, false},
		{"save", services.ErrSaveRejected, false},
		{"link", services.ErrLinkInsertionFailed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsFatal(tc.err); got != tc.fatal {
				t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
			}
		})
	}
}

func TestBadLanguageIsBadRow(t *testing.T) {
	if !errors.Is(services.ErrBadLanguage, services.ErrBadManifestRow) {
		t.Fatal("expected bad language to classify as a bad manifest row")
	}
	if got := services.Kind(services.ErrBadLanguage); got != "bad_language" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := services.Kind(errors.New("other")); got != "unknown" {
		t.Fatalf("unexpected kind %q", got)
	}
}
