package report_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"glossaudio/internal/clip"
	"glossaudio/internal/report"
)

func sampleReport() *report.Report {
	rep := report.New("run-1", []string{"Week_2024_10.zip"})
	c := &clip.AudioClip{DocID: 501, TermName: "alpha", Language: clip.English, Archive: "Week_2024_10.zip"}
	rep.Created(9001, c)
	rep.Updated(7001, &clip.AudioClip{DocID: 502, TermName: "beta", Language: clip.Spanish, Archive: "Week_2024_10.zip"})
	rep.LinkAdded(501, 9001)
	rep.LinkReplaced(502, 7001)
	rep.Skipped(503)
	rep.DocFailure(504, errors.New("link insertion failed: no <TermName> for gamma"))
	rep.DocFailure(0, errors.New("row 7: bad manifest row"))
	return rep
}

func TestRowsInProcessingOrder(t *testing.T) {
	rows := sampleReport().Rows()
	want := []report.Row{
		{ID: "CDR9001", Message: "created Media doc for CDR501 (alpha [en]) from Week_2024_10.zip", Kind: report.KindCreated},
		{ID: "CDR7001", Message: "updated Media doc for CDR502 (beta [es]) from Week_2024_10.zip", Kind: report.KindUpdated},
		{ID: "CDR501", Message: "Adding link from this document to Media document CDR9001", Kind: report.KindLinkAdded},
		{ID: "CDR502", Message: "Updating link from this document to Media document CDR7001", Kind: report.KindLinkReplaced},
		{ID: "CDR503", Message: "Skipped (already processed)", Kind: report.KindSkipped},
		{ID: "CDR504", Message: "link insertion failed: no <TermName> for gamma", Kind: report.KindFailure},
		{ID: "", Message: "row 7: bad manifest row", Kind: report.KindFailure},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\n got %#v\nwant %#v", rows, want)
	}
}

func TestCountsAndSummary(t *testing.T) {
	rep := sampleReport()
	got := rep.Counts()
	want := report.Counts{Created: 1, Updated: 1, Linked: 1, Replaced: 1, Skipped: 1, Failed: 2}
	if got != want {
		t.Fatalf("Counts = %+v, want %+v", got, want)
	}
	if len(rep.Failures()) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(rep.Failures()))
	}
	rep.Started = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	rep.Finished = rep.Started.Add(1500 * time.Millisecond)
	if s := rep.Summary(); s != "1 created, 1 updated, 1 linked, 1 replaced, 1 skipped, 2 failed in 1.5s" {
		t.Fatalf("unexpected summary %q", s)
	}
}

func TestRenderText(t *testing.T) {
	var buf strings.Builder
	if err := sampleReport().RenderText(&buf); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CDR ID", "Processing", "CDR9001", "Skipped (already processed)", "╭", "1 created"} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "PROCESSING") {
		t.Fatalf("header was upper-cased:\n%s", out)
	}
}

func TestRenderHTML(t *testing.T) {
	var buf strings.Builder
	if err := sampleReport().RenderHTML(&buf); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<table class="report">`) {
		t.Fatalf("missing table class:\n%s", out)
	}
	if !strings.Contains(out, "CDR ID") || !strings.Contains(out, "Processing") {
		t.Fatalf("missing headers:\n%s", out)
	}
	if strings.Contains(out, "<TermName>") || !strings.Contains(out, "&lt;TermName&gt;") {
		t.Fatalf("expected escaped message text:\n%s", out)
	}
}
