package glossary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beevik/etree"

	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
	"glossaudio/internal/logging"
	"glossaudio/internal/mediadoc"
	"glossaudio/internal/report"
	"glossaudio/internal/services"
)

// SaveComment is the version comment for glossary documents the linker changes.
const SaveComment = "Adding links from glossary term name docs to media docs"

// ReRecordingComment is added next to a replaced link.
const ReRecordingComment = "Approved audio re-recording linked"

// LinkedPath is the query-term path pattern matching any existing
// pronunciation link in a glossary term name document.
const LinkedPath = "/GlossaryTermName/%/MediaLink/MediaID/@cdr:ref"

// Source is the clip set the linker works from. *aggregate.Aggregator
// satisfies it.
type Source interface {
	Docs() []int
	Clips(docID int) []*clip.AudioClip
}

// Options configures a Linker.
type Options struct {
	// Now supplies the DateLastModified value. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type action int

const (
	actionUnchanged action = iota
	actionAdded
	actionReplaced
)

type outcome struct {
	mediaID int
	action  action
}

// Linker is the modify job that inserts or replaces MediaLink elements.
type Linker struct {
	source  Source
	report  *report.Report
	now     func() time.Time
	logger  *slog.Logger
	pending map[int][]outcome
}

// NewLinker returns a linker over source recording rows in rep.
func NewLinker(source Source, rep *report.Report, opts Options) *Linker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Linker{
		source:  source,
		report:  rep,
		now:     now,
		logger:  logger,
		pending: make(map[int][]outcome),
	}
}

// Select returns the sorted glossary ids holding at least one saved clip.
func (l *Linker) Select() []int {
	var ids []int
	for _, id := range l.source.Docs() {
		if len(l.saved(id)) == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (l *Linker) saved(docID int) []*clip.AudioClip {
	var out []*clip.AudioClip
	for _, c := range l.source.Clips(docID) {
		if c.MediaID > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Transform links every saved clip of doc. Any clip whose name block is
// missing fails the whole document and leaves it untouched.
func (l *Linker) Transform(ctx context.Context, doc *cdr.Document) ([]byte, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc.XML); err != nil {
		return nil, services.Wrap(services.ErrLinkInsertionFailed, "link", "parse", cdr.FormatID(doc.ID), err)
	}
	root := tree.Root()
	if root == nil || root.Tag != cdr.DocTypeGlossaryTermName {
		return nil, services.Wrap(services.ErrLinkInsertionFailed, "link", "parse",
			cdr.FormatID(doc.ID)+" is not a glossary term name document", nil)
	}

	date := l.now().Format("2006-01-02")
	var outcomes []outcome
	mutated := false
	for _, c := range l.saved(doc.ID) {
		block := findBlock(root, c.Language, c.TermName)
		if block == nil {
			return nil, services.Wrap(services.ErrLinkInsertionFailed, "link", "find name block",
				fmt.Sprintf("no %s block for %q in %s", c.Language.NameBlock(), c.TermName, cdr.FormatID(doc.ID)), nil)
		}
		label := mediadoc.LinkLabel(mediadoc.MediaTitle(doc.Title, c.Language))
		act, err := link(block, c.MediaID, label)
		if err != nil {
			return nil, services.Wrap(services.ErrLinkInsertionFailed, "link", "insert", c.Describe(), err)
		}
		if act != actionUnchanged {
			block.Touch(date)
			mutated = true
		}
		outcomes = append(outcomes, outcome{mediaID: c.MediaID, action: act})
	}

	l.pending[doc.ID] = outcomes
	if !mutated {
		return doc.XML, nil
	}
	out, err := tree.WriteToBytes()
	if err != nil {
		delete(l.pending, doc.ID)
		return nil, services.Wrap(services.ErrLinkInsertionFailed, "link", "serialize", cdr.FormatID(doc.ID), err)
	}
	return out, nil
}

// Saved records the outcomes of a stored or unchanged document.
func (l *Linker) Saved(id int, changed bool) {
	outcomes := l.pending[id]
	delete(l.pending, id)
	if !changed {
		l.report.Skipped(id)
		return
	}
	for _, o := range outcomes {
		switch o.action {
		case actionAdded:
			l.report.LinkAdded(id, o.mediaID)
		case actionReplaced:
			l.report.LinkReplaced(id, o.mediaID)
		}
	}
}

// Failed records a document the driver could not update.
func (l *Linker) Failed(id int, err error) {
	delete(l.pending, id)
	l.report.DocFailure(id, err)
	logging.ErrorWithContext(l.logger, "glossary link failed", services.Kind(err),
		logging.Int(logging.FieldDocID, id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "fix the glossary document or manifest row and rerun the archive"),
	)
}

func findBlock(root *etree.Element, lang clip.Language, term string) *NameBlock {
	term = strings.TrimSpace(term)
	for _, el := range root.SelectElements(lang.NameBlock()) {
		block := NewNameBlock(el)
		if block.Name() == term {
			return block
		}
	}
	return nil
}

// LinkElement builds the MediaLink for mediaID.
func LinkElement(mediaID int, label string) *etree.Element {
	el := etree.NewElement("MediaLink")
	id := el.CreateElement("MediaID")
	id.CreateAttr("cdr:ref", cdr.FormatRef(mediaID))
	id.SetText(label)
	return el
}

// linkTarget returns the media id and label of an existing MediaLink.
func linkTarget(el *etree.Element) (int, string) {
	mediaID := el.SelectElement("MediaID")
	if mediaID == nil {
		return 0, ""
	}
	id, err := cdr.ParseID(mediaID.SelectAttrValue("cdr:ref", ""))
	if err != nil {
		return 0, strings.TrimSpace(mediaID.Text())
	}
	return id, strings.TrimSpace(mediaID.Text())
}

func link(block *NameBlock, mediaID int, label string) (action, error) {
	existing := block.FindAll(KindMediaLink)
	if len(existing) == 0 {
		if !block.InsertAfterLastOfKind(LinkElement(mediaID, label), KindTermNameString,
			KindPronunciation, KindPronunciationResource, KindTranslationResource) {
			return actionUnchanged, fmt.Errorf("name block has no TermNameString")
		}
		return actionAdded, nil
	}

	if len(existing) == 1 {
		if id, text := linkTarget(existing[0]); id == mediaID && text == label {
			return actionUnchanged, nil
		}
	}
	replacement := LinkElement(mediaID, label)
	block.Replace(existing[0], replacement)
	for _, extra := range existing[1:] {
		block.Remove(extra)
	}
	comment := etree.NewElement("Comment")
	comment.SetText(ReRecordingComment)
	block.InsertBeforeFirstOfKind(comment, replacement, KindComment, KindLastModified)
	return actionReplaced, nil
}
