package mediadoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"glossaudio/internal/cdr"
	"glossaudio/internal/clip"
)

// MediaTitle derives the Media title from a glossary term name document
// title: the first ";" segment, with "-Spanish" appended for Spanish clips.
func MediaTitle(glossaryTitle string, lang clip.Language) string {
	title := strings.TrimSpace(strings.SplitN(glossaryTitle, ";", 2)[0])
	if lang == clip.Spanish {
		title += "-Spanish"
	}
	return title
}

// LinkLabel is the text of a MediaLink and the title of the Media document.
func LinkLabel(mediaTitle string) string {
	return mediaTitle + "; pronunciation; mp3"
}

// ErrIncomplete reports a Build with required fields unset.
var ErrIncomplete = errors.New("media record incomplete")

// Record is the descriptive content of a pronunciation Media document.
type Record struct {
	Title         string
	GlossaryID    int
	GlossaryTitle string
	TermName      string
	Language      clip.Language
	Filename      string
	Created       string
	Creator       string
	RunSeconds    int
}

// Builder collects Record fields.
type Builder struct {
	rec Record
}

// NewBuilder starts an empty record.
func NewBuilder() *Builder {
	return &Builder{}
}

// FromClip seeds a builder with everything an AudioClip carries. The caller
// supplies the glossary title and creator.
func FromClip(c *clip.AudioClip) *Builder {
	return NewBuilder().
		Term(c.TermName, c.Language).
		Source(c.Filename, c.Created).
		RunSeconds(c.Duration).
		glossaryID(c.DocID)
}

func (b *Builder) glossaryID(id int) *Builder {
	b.rec.GlossaryID = id
	return b
}

// Glossary sets the owning glossary document and derives the title from it.
func (b *Builder) Glossary(id int, title string) *Builder {
	b.rec.GlossaryID = id
	b.rec.GlossaryTitle = strings.TrimSpace(title)
	if b.rec.GlossaryTitle != "" && b.rec.Language.Valid() {
		b.rec.Title = MediaTitle(b.rec.GlossaryTitle, b.rec.Language)
	}
	return b
}

// Term sets the pronounced term and its language.
func (b *Builder) Term(name string, lang clip.Language) *Builder {
	b.rec.TermName = strings.TrimSpace(name)
	b.rec.Language = lang
	if b.rec.GlossaryTitle != "" && lang.Valid() {
		b.rec.Title = MediaTitle(b.rec.GlossaryTitle, lang)
	}
	return b
}

// Source sets the clip member name and the date it was recorded.
func (b *Builder) Source(filename, created string) *Builder {
	b.rec.Filename = strings.TrimSpace(filename)
	b.rec.Created = strings.TrimSpace(created)
	return b
}

// Creator sets the credited voice.
func (b *Builder) Creator(creator string) *Builder {
	b.rec.Creator = strings.TrimSpace(creator)
	return b
}

// RunSeconds sets the clip length.
func (b *Builder) RunSeconds(seconds int) *Builder {
	b.rec.RunSeconds = seconds
	return b
}

// Build returns the record, or ErrIncomplete naming every missing field.
func (b *Builder) Build() (*Record, error) {
	var missing []string
	check := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	r := b.rec
	check(r.Title != "", "title")
	check(r.GlossaryID > 0, "glossary id")
	check(r.GlossaryTitle != "", "glossary title")
	check(r.TermName != "", "term name")
	check(r.Language.Valid(), "language")
	check(r.Filename != "", "filename")
	check(r.Created != "", "creation date")
	check(r.Creator != "", "creator")
	if r.RunSeconds < 0 {
		missing = append(missing, "run seconds")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return &r, nil
}

// DocTitle returns the stored document title.
func (r *Record) DocTitle() string {
	return LinkLabel(r.Title)
}

// XML renders the record as a Media document.
func (r *Record) XML() ([]byte, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement(cdr.DocTypeMedia)
	root.CreateAttr("xmlns:cdr", cdr.Namespace)
	root.CreateAttr("Usage", "External")

	root.CreateElement("MediaTitle").SetText(r.Title)

	sound := root.CreateElement("PhysicalMedia").CreateElement("SoundData")
	sound.CreateElement("SoundType").SetText("Speech")
	sound.CreateElement("SoundEncoding").SetText("MP3")
	sound.CreateElement("RunSeconds").SetText(fmt.Sprint(r.RunSeconds))

	source := root.CreateElement("MediaSource").CreateElement("OriginalSource")
	source.CreateElement("Creator").SetText(r.Creator)
	source.CreateElement("DateCreated").SetText(r.Created)
	source.CreateElement("SourceFilename").SetText(r.Filename)

	content := root.CreateElement("MediaContent")
	content.CreateElement("Categories").CreateElement("Category").SetText("pronunciation")
	desc := content.CreateElement("ContentDescriptions").CreateElement("ContentDescription")
	desc.CreateAttr("audience", "Patients")
	desc.CreateAttr("language", r.Language.Code())
	desc.SetText(`Pronunciation of dictionary term "` + r.TermName + `"`)

	glossary := root.CreateElement("ProposedUse").CreateElement("Glossary")
	glossary.CreateAttr("cdr:ref", cdr.FormatRef(r.GlossaryID))
	glossary.SetText(r.GlossaryTitle)

	return doc.WriteToBytes()
}
