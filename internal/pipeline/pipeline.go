package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"glossaudio/internal/aggregate"
	"glossaudio/internal/batch"
	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
	"glossaudio/internal/config"
	"glossaudio/internal/glossary"
	"glossaudio/internal/logging"
	"glossaudio/internal/manifest"
	"glossaudio/internal/media/probe"
	"glossaudio/internal/mediadoc"
	"glossaudio/internal/modify"
	"glossaudio/internal/report"
	"glossaudio/internal/services"
)

// Instructions is shown with the archive list before the operator confirms a run.
const Instructions = "Confirm to create Media documents for the MP3 files contained in " +
	"the archive files listed below, and have those documents linked from the " +
	"corresponding GlossaryTermName documents. Archives are processed in the order " +
	"listed, with MP3 clips found in later archives overriding those found in " +
	"earlier archives. If this is not the correct set of archives, ask a developer " +
	"to run the import with an explicit archive list."

// RequiredPermissions are checked before any archive is opened.
var RequiredPermissions = []cdr.Permission{
	{Action: cdr.ActionAddDocument, DocType: cdr.DocTypeMedia},
	{Action: cdr.ActionModifyDocument, DocType: cdr.DocTypeMedia},
	{Action: cdr.ActionModifyDocument, DocType: cdr.DocTypeGlossaryTermName},
	{Action: cdr.ActionAudioImport},
}

// Dependencies are the services a pipeline talks to.
type Dependencies struct {
	Session  cdr.Session
	Docs     cdr.DocumentService
	Settings cdr.Settings
	// Links is consulted only when Options.SkipLinked is set.
	Links  cdr.LinkIndex
	Prober probe.Prober
	Logger *slog.Logger
	Now    func() time.Time
}

// Options are the run settings.
type Options struct {
	DropDir         string
	LockPath        string
	FallbackCreator string
	SkipLinked      bool
}

// OptionsFromConfig maps configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DropDir:         cfg.Paths.DropDir,
		LockPath:        cfg.LockPath(),
		FallbackCreator: cfg.Media.FallbackCreator,
		SkipLinked:      cfg.Import.SkipLinked,
	}
}

// Plan is what a run would process.
type Plan struct {
	User     string
	Dir      string
	Archives []string
}

// Pipeline carries the per-run caches. Create one per run or per request.
type Pipeline struct {
	deps     Dependencies
	opts     Options
	logger   *slog.Logger
	selector *batch.Selector
	allowed  bool
}

// New returns a pipeline.
func New(deps Dependencies, opts Options) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, logging.ComponentAudioImport)
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		deps:     deps,
		opts:     opts,
		logger:   logger,
		selector: batch.NewSelector(opts.DropDir, logger),
	}
}

// Plan checks permissions and selects the newest batch, or validates the
// explicit archive list when one is given.
func (p *Pipeline) Plan(ctx context.Context, archives ...string) (Plan, error) {
	if err := p.authorize(ctx); err != nil {
		return Plan{}, err
	}
	names, err := p.archives(archives)
	if err != nil {
		return Plan{}, err
	}
	return Plan{User: p.deps.Session.User(), Dir: p.selector.Dir(), Archives: names}, nil
}

func (p *Pipeline) authorize(ctx context.Context) error {
	if p.allowed {
		return nil
	}
	if p.deps.Session == nil {
		return services.Wrap(services.ErrUnauthorized, "pipeline", "permissions", "no session", nil)
	}
	user := p.deps.Session.User()
	for _, perm := range RequiredPermissions {
		ok, err := p.deps.Session.CanDo(ctx, perm.Action, perm.DocType)
		if err != nil {
			return services.Wrap(services.ErrUnauthorized, "pipeline", "permissions", perm.String(), err)
		}
		if !ok {
			return services.Wrap(services.ErrUnauthorized, "pipeline", "permissions",
				fmt.Sprintf("%q lacks %s", user, perm), nil)
		}
	}
	p.allowed = true
	return nil
}

// Run imports archives, or the newest batch when archives is empty. The
// report is returned even when a fatal error ends the run early.
func (p *Pipeline) Run(ctx context.Context, archives []string) (*report.Report, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	rep := report.New(runID, archives)
	rep.Started = p.deps.Now()
	defer func() { rep.Finished = p.deps.Now() }()

	if err := p.authorize(ctx); err != nil {
		return rep, err
	}
	names, err := p.archives(archives)
	if err != nil {
		return rep, err
	}
	rep.Archives = names

	lock := flock.New(p.opts.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return rep, services.Wrap(services.ErrImportRunning, "pipeline", "lock", p.opts.LockPath, err)
	}
	if !locked {
		return rep, services.Wrap(services.ErrImportRunning, "pipeline", "lock",
			"another import holds "+p.opts.LockPath, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "release run lock", "lock_release_failed", logging.Error(err))
		}
	}()

	logger.Info("import started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("user", p.deps.Session.User()),
		logging.Strings("archives", names),
	)

	agg := aggregate.New(logger)
	for i, name := range names {
		if err := p.readArchive(services.WithArchive(ctx, name), i, name, agg, rep); err != nil {
			return rep, err
		}
	}
	logger.Info("batch aggregated",
		logging.Int("clips", agg.Len()),
		logging.Int("docs", len(agg.Docs())),
		logging.Int("replaced", agg.Replaced()),
	)

	if err := p.skipLinked(ctx, agg, rep); err != nil {
		return rep, err
	}
	if err := p.saveMedia(ctx, agg, rep); err != nil {
		return rep, err
	}
	if err := p.link(ctx, agg, rep); err != nil {
		return rep, err
	}

	logger.Info("import finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("summary", rep.Counts().String()),
	)
	return rep, nil
}

func (p *Pipeline) archives(explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return p.selector.Validate(explicit)
	}
	return p.selector.Select()
}

func (p *Pipeline) readArchive(ctx context.Context, index int, name string, agg *aggregate.Aggregator, rep *report.Report) error {
	ctx = services.WithStage(ctx, "read")
	logger := logging.WithContext(ctx, p.logger)

	archive, err := manifest.Open(p.selector.Path(name), logger)
	if err != nil {
		return err
	}
	defer archive.Close()

	return archive.Clips(ctx, p.deps.Prober, func(c *clip.AudioClip, err error) error {
		if err != nil {
			if services.IsFatal(err) {
				return err
			}
			docID := 0
			var rowErr *manifest.RowError
			if errors.As(err, &rowErr) {
				docID = rowErr.DocID
			}
			rep.DocFailure(docID, err)
			logging.WarnWithContext(logger, "manifest row skipped", services.Kind(err), logging.Error(err))
			return nil
		}
		agg.Add(index, c)
		return nil
	})
}

func (p *Pipeline) saveMedia(ctx context.Context, agg *aggregate.Aggregator, rep *report.Report) error {
	ctx = services.WithStage(ctx, "media")
	recorder := mediadoc.NewRecorder(p.deps.Docs, p.deps.Settings, rep, mediadoc.Options{
		FallbackCreator: p.opts.FallbackCreator,
		Logger:          p.logger,
	})
	for _, docID := range agg.Docs() {
		for _, c := range agg.Clips(docID) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := recorder.Save(ctx, c); err != nil {
				if services.IsFatal(err) {
					return err
				}
				// A clip without a saved Media document gets no link.
				c.MediaID = 0
				rowErr := &manifest.RowError{Archive: c.Archive, Row: c.Row, DocID: c.DocID, Err: err}
				rep.DocFailure(c.DocID, rowErr)
				logging.ErrorWithContext(logging.WithContext(services.WithDocID(ctx, docID), p.logger),
					"media save failed", services.Kind(err), logging.Error(rowErr))
			}
		}
	}
	return nil
}

// skipLinked drops documents that already link to a Media document before
// any Media document is saved for them.
func (p *Pipeline) skipLinked(ctx context.Context, agg *aggregate.Aggregator, rep *report.Report) error {
	if !p.opts.SkipLinked {
		return nil
	}
	ctx = services.WithStage(ctx, "skip")
	logger := logging.WithContext(ctx, p.logger)
	if p.deps.Links == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "skip linked", "no link index available", nil)
	}
	done, err := p.deps.Links.DocsWithPath(ctx, glossary.LinkedPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "pipeline", "skip linked", "query term index", err)
	}
	skipped := 0
	for _, docID := range agg.Docs() {
		if _, ok := done[docID]; !ok {
			continue
		}
		agg.Drop(docID)
		rep.Skipped(docID)
		skipped++
	}
	logger.Info("documents already processed",
		logging.Int("linked", len(done)),
		logging.Int("skipped", skipped),
	)
	return nil
}

func (p *Pipeline) link(ctx context.Context, agg *aggregate.Aggregator, rep *report.Report) error {
	ctx = services.WithStage(ctx, "link")
	logger := logging.WithContext(ctx, p.logger)

	linker := glossary.NewLinker(agg, rep, glossary.Options{Now: p.deps.Now, Logger: logger})
	driver := modify.NewDriver(p.deps.Docs, modify.Options{Comment: glossary.SaveComment, Logger: p.logger})
	result, err := driver.Run(ctx, linker)
	logger.Info("glossary documents processed",
		logging.Int("visited", result.Visited),
		logging.Int("saved", result.Saved),
		logging.Int("unchanged", result.Unchanged),
		logging.Int("failed", result.Failed),
	)
	return err
}
