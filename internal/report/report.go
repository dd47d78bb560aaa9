package report

import (
	"fmt"
	"strings"
	"time"

	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
)

// Kind classifies a report row.
type Kind string

// Row kinds.
const (
	KindCreated      Kind = "created"
	KindUpdated      Kind = "updated"
	KindLinkAdded    Kind = "linked"
	KindLinkReplaced Kind = "replaced"
	KindSkipped      Kind = "skipped"
	KindFailure      Kind = "failed"
)

// SkippedMessage is the message recorded for documents left alone.
const SkippedMessage = "Skipped (already processed)"

// Row is one line of the run report.
type Row struct {
	ID      string
	Message string
	Kind    Kind
}

// Counts summarizes a report by row kind.
type Counts struct {
	Created  int
	Updated  int
	Linked   int
	Replaced int
	Skipped  int
	Failed   int
}

func (c Counts) String() string {
	return fmt.Sprintf("%d created, %d updated, %d linked, %d replaced, %d skipped, %d failed",
		c.Created, c.Updated, c.Linked, c.Replaced, c.Skipped, c.Failed)
}

// Report is the ordered record of one run.
type Report struct {
	RunID    string
	Archives []string
	Started  time.Time
	Finished time.Time
	rows     []Row
}

// New returns an empty report for runID.
func New(runID string, archives []string) *Report {
	return &Report{RunID: runID, Archives: append([]string(nil), archives...)}
}

func (r *Report) add(id, message string, kind Kind) {
	r.rows = append(r.rows, Row{ID: id, Message: message, Kind: kind})
}

// Created records a new Media document saved for c.
func (r *Report) Created(mediaID int, c *clip.AudioClip) {
	r.add(cdr.FormatID(mediaID), mediaMessage("created", c), KindCreated)
}

// Updated records a new version of an existing Media document saved for c.
func (r *Report) Updated(mediaID int, c *clip.AudioClip) {
	r.add(cdr.FormatID(mediaID), mediaMessage("updated", c), KindUpdated)
}

func mediaMessage(action string, c *clip.AudioClip) string {
	return fmt.Sprintf("%s Media doc for %s from %s", action, c.Describe(), c.Archive)
}

// LinkAdded records a new MediaLink in glossary document docID.
func (r *Report) LinkAdded(docID, mediaID int) {
	r.add(cdr.FormatID(docID), "Adding link from this document to Media document "+cdr.FormatID(mediaID), KindLinkAdded)
}

// LinkReplaced records a MediaLink rewritten to point at mediaID.
func (r *Report) LinkReplaced(docID, mediaID int) {
	r.add(cdr.FormatID(docID), "Updating link from this document to Media document "+cdr.FormatID(mediaID), KindLinkReplaced)
}

// Skipped records a glossary document the run did not need to change.
func (r *Report) Skipped(docID int) {
	r.add(cdr.FormatID(docID), SkippedMessage, KindSkipped)
}

// Failure records an error against id, which may be empty.
func (r *Report) Failure(id string, err error) {
	message := "unknown failure"
	if err != nil {
		message = err.Error()
	}
	r.add(id, message, KindFailure)
}

// DocFailure records an error against a CDR document id; zero leaves the id blank.
func (r *Report) DocFailure(docID int, err error) {
	id := ""
	if docID > 0 {
		id = cdr.FormatID(docID)
	}
	r.Failure(id, err)
}

// Rows returns a copy of the rows in processing order.
func (r *Report) Rows() []Row {
	return append([]Row(nil), r.rows...)
}

// Len returns the number of rows.
func (r *Report) Len() int {
	return len(r.rows)
}

// Counts tallies rows by kind.
func (r *Report) Counts() Counts {
	var c Counts
	for _, row := range r.rows {
		switch row.Kind {
		case KindCreated:
			c.Created++
		case KindUpdated:
			c.Updated++
		case KindLinkAdded:
			c.Linked++
		case KindLinkReplaced:
			c.Replaced++
		case KindSkipped:
			c.Skipped++
		case KindFailure:
			c.Failed++
		}
	}
	return c
}

// Failures returns only the failure rows.
func (r *Report) Failures() []Row {
	var out []Row
	for _, row := range r.rows {
		if row.Kind == KindFailure {
			out = append(out, row)
		}
	}
	return out
}

// Summary renders a one-line summary including elapsed time when known.
func (r *Report) Summary() string {
	parts := []string{r.Counts().String()}
	if !r.Started.IsZero() && !r.Finished.IsZero() {
		parts = append(parts, "in "+r.Finished.Sub(r.Started).Round(time.Millisecond).String())
	}
	return strings.Join(parts, " ")
}
