package mediadoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
	"glossaudio/internal/logging"
	"glossaudio/internal/report"
	"glossaudio/internal/services"
)

// Creator settings and fallback.
const (
	CreatorGroup   = "media"
	CreatorSetting = "audio-pronunciation-creator"
	DefaultCreator = "Vanessa Richardson, VR Voice"
)

// SaveComment is recorded as both comment and reason on every Media save.
const SaveComment = "Saved by Load Glossary Audio Files script"

// SaveOptions is the flag set for Media saves.
var SaveOptions = cdr.SaveOptions{
	Validate:    true,
	Version:     true,
	Publishable: true,
	Unlock:      true,
	Comment:     SaveComment,
	Reason:      SaveComment,
}

// Options configures a Recorder.
type Options struct {
	// FallbackCreator applies when the ctl table has no active creator row.
	FallbackCreator string
	Logger          *slog.Logger
}

// Recorder saves clips as Media documents. It caches the creator lookup for
// its lifetime, so use one Recorder per run.
type Recorder struct {
	docs     cdr.DocumentService
	settings cdr.Settings
	report   *report.Report
	logger   *slog.Logger
	fallback string

	creator       string
	creatorLoaded bool
}

// NewRecorder wires a recorder to the document service, the ctl settings, and
// the run report.
func NewRecorder(docs cdr.DocumentService, settings cdr.Settings, rep *report.Report, opts Options) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	fallback := strings.TrimSpace(opts.FallbackCreator)
	if fallback == "" {
		fallback = DefaultCreator
	}
	return &Recorder{
		docs:     docs,
		settings: settings,
		report:   rep,
		logger:   logger,
		fallback: fallback,
	}
}

// Save creates or updates the Media document for c and stores the resulting
// id on c.MediaID.
func (r *Recorder) Save(ctx context.Context, c *clip.AudioClip) (int, error) {
	ctx = services.WithDocID(ctx, c.DocID)
	if c.MediaID > 0 {
		return r.update(ctx, c)
	}
	return r.create(ctx, c)
}

func (r *Recorder) create(ctx context.Context, c *clip.AudioClip) (int, error) {
	glossaryTitle, err := r.docs.Title(ctx, c.DocID)
	if err != nil {
		return 0, services.Wrap(services.ErrSaveRejected, "media", "glossary title", cdr.FormatID(c.DocID), err)
	}
	creator, err := r.creatorFor(ctx, c)
	if err != nil {
		return 0, err
	}
	record, err := FromClip(c).Glossary(c.DocID, glossaryTitle).Creator(creator).Build()
	if err != nil {
		return 0, services.Wrap(services.ErrSaveRejected, "media", "build record", c.Describe(), err)
	}
	xml, err := record.XML()
	if err != nil {
		return 0, services.Wrap(services.ErrSaveRejected, "media", "render record", c.Describe(), err)
	}

	id, err := r.docs.Create(ctx, &cdr.Document{
		DocType: cdr.DocTypeMedia,
		Title:   record.DocTitle(),
		XML:     xml,
		Blob:    c.Bytes,
	}, SaveOptions)
	if err != nil {
		return 0, rejected("create", c, err)
	}

	c.MediaID = id
	r.report.Created(id, c)
	logging.WithContext(ctx, r.logger).Info("media document created",
		logging.String(logging.FieldEventType, "media_created"),
		logging.String("media_id", cdr.FormatID(id)),
		logging.String("term", c.TermName),
		logging.String("language", c.Language.Code()),
		logging.Int("seconds", c.Duration),
		logging.Bytes("size", len(c.Bytes)),
	)
	return id, nil
}

func (r *Recorder) update(ctx context.Context, c *clip.AudioClip) (int, error) {
	id := c.MediaID
	docType, err := r.docs.DocType(ctx, id)
	if err != nil {
		return 0, services.Wrap(services.ErrNotAMediaRecord, "media", "doc type", cdr.FormatID(id), err)
	}
	if docType != cdr.DocTypeMedia {
		return 0, services.Wrap(services.ErrNotAMediaRecord, "media", "doc type",
			fmt.Sprintf("%s is a %s document", cdr.FormatID(id), docType), nil)
	}

	doc, err := r.docs.CheckOut(ctx, id, "re-using media document")
	if err != nil {
		return 0, rejected("check out", c, err)
	}
	saved := false
	defer func() {
		if saved {
			return
		}
		if unlockErr := r.docs.Unlock(ctx, id); unlockErr != nil {
			logging.WithContext(ctx, r.logger).Warn("unlock after failed save",
				logging.String("media_id", cdr.FormatID(id)),
				logging.Error(unlockErr),
				logging.String(logging.FieldEventType, "unlock_failed"),
			)
		}
	}()

	doc.Blob = c.Bytes
	if err := r.docs.Save(ctx, doc, SaveOptions); err != nil {
		return 0, rejected("save", c, err)
	}
	saved = true

	r.report.Updated(id, c)
	logging.WithContext(ctx, r.logger).Info("media document updated",
		logging.String(logging.FieldEventType, "media_updated"),
		logging.String("media_id", cdr.FormatID(id)),
		logging.String("term", c.TermName),
		logging.String("language", c.Language.Code()),
		logging.Bytes("size", len(c.Bytes)),
	)
	return id, nil
}

func rejected(op string, c *clip.AudioClip, err error) error {
	if errors.Is(err, services.ErrSaveRejected) {
		return fmt.Errorf("media %s for %s: %w", op, c.Describe(), err)
	}
	return services.Wrap(services.ErrSaveRejected, "media", op, c.Describe(), err)
}

func (r *Recorder) creatorFor(ctx context.Context, c *clip.AudioClip) (string, error) {
	if override := strings.TrimSpace(c.Creator); override != "" {
		return override, nil
	}
	if r.creatorLoaded {
		return r.creator, nil
	}
	value, ok, err := r.settings.Setting(ctx, CreatorGroup, CreatorSetting)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "media", "creator setting", CreatorGroup+"/"+CreatorSetting, err)
	}
	r.creator = r.fallback
	if value = strings.TrimSpace(value); ok && value != "" {
		r.creator = value
	}
	r.creatorLoaded = true
	return r.creator, nil
}
