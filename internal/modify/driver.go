package modify

import (
	"bytes"
	"context"
	"log/slog"

	"glossaudio/internal/cdr"
	"glossaudio/internal/logging"
	"glossaudio/internal/services"
)

// Job is one batch edit.
type Job interface {
	// Select returns the ids to visit, in visiting order.
	Select() []int
	// Transform returns the new XML for doc. Returning doc.XML unchanged
	// means nothing needs saving.
	Transform(ctx context.Context, doc *cdr.Document) ([]byte, error)
	// Saved is called after a document is stored or left alone; changed is
	// false when Transform returned identical bytes.
	Saved(id int, changed bool)
	// Failed is called when a document could not be checked out, transformed,
	// or saved. The driver moves on to the next id.
	Failed(id int, err error)
}

// Result counts what a Run did.
type Result struct {
	Visited   int
	Saved     int
	Unchanged int
	Failed    int
}

// Options configures a Driver.
type Options struct {
	// Comment is recorded on checkout and as the version comment and reason.
	Comment string
	Logger  *slog.Logger
}

// Driver applies jobs through a document service.
type Driver struct {
	docs    cdr.DocumentService
	comment string
	logger  *slog.Logger
}

// NewDriver returns a driver saving through docs.
func NewDriver(docs cdr.DocumentService, opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{docs: docs, comment: opts.Comment, logger: logger}
}

func (d *Driver) saveOptions() cdr.SaveOptions {
	return cdr.SaveOptions{
		Validate:    true,
		Version:     true,
		Publishable: true,
		Unlock:      true,
		Comment:     d.comment,
		Reason:      d.comment,
	}
}

// Run visits every selected document once. Per-document failures go to
// job.Failed; only context cancellation stops the loop early.
func (d *Driver) Run(ctx context.Context, job Job) (Result, error) {
	var result Result
	for _, id := range job.Select() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Visited++
		changed, err := d.one(services.WithDocID(ctx, id), job, id)
		switch {
		case err != nil:
			result.Failed++
			job.Failed(id, err)
		case changed:
			result.Saved++
			job.Saved(id, true)
		default:
			result.Unchanged++
			job.Saved(id, false)
		}
	}
	return result, nil
}

func (d *Driver) one(ctx context.Context, job Job, id int) (bool, error) {
	logger := logging.WithContext(ctx, d.logger)

	doc, err := d.docs.CheckOut(ctx, id, d.comment)
	if err != nil {
		logging.WarnWithContext(logger, "check out failed", "checkout_failed", logging.Error(err))
		return false, services.Wrap(services.ErrSaveRejected, "modify", "check out", cdr.FormatID(id), err)
	}
	released := false
	defer func() {
		if released {
			return
		}
		if err := d.docs.Unlock(ctx, id); err != nil {
			logging.WarnWithContext(logger, "unlock failed", "unlock_failed", logging.Error(err))
		}
	}()

	updated, err := job.Transform(ctx, doc)
	if err != nil {
		return false, err
	}
	if bytes.Equal(updated, doc.XML) {
		logger.Debug("document unchanged", logging.String(logging.FieldEventType, "doc_unchanged"))
		return false, nil
	}

	doc.XML = updated
	if err := d.docs.Save(ctx, doc, d.saveOptions()); err != nil {
		return false, services.Wrap(services.ErrSaveRejected, "modify", "save", cdr.FormatID(id), err)
	}
	released = true
	logger.Info("document saved", logging.String(logging.FieldEventType, "doc_saved"))
	return true, nil
}
