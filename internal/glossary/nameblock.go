package glossary

import (
	"strings"

	"github.com/beevik/etree"
)

// Kind is the schema role of a name block child.
type Kind int

// Child kinds, in schema order where the schema fixes one.
const (
	KindOther Kind = iota
	KindTermNameString
	KindPronunciation
	KindPronunciationResource
	KindTranslationResource
	KindMediaLink
	KindComment
	KindLastModified
)

var kindTags = map[string]Kind{
	"TermNameString":        KindTermNameString,
	"TermPronunciation":     KindPronunciation,
	"PronunciationResource": KindPronunciationResource,
	"TranslationResource":   KindTranslationResource,
	"MediaLink":             KindMediaLink,
	"Comment":               KindComment,
	"DateLastModified":      KindLastModified,
}

// KindOf classifies el by tag.
func KindOf(el *etree.Element) Kind {
	if el == nil {
		return KindOther
	}
	if kind, ok := kindTags[el.Tag]; ok {
		return kind
	}
	return KindOther
}

func (k Kind) in(kinds []Kind) bool {
	for _, other := range kinds {
		if k == other {
			return true
		}
	}
	return false
}

// NameBlock wraps one TermName or TranslatedName element.
type NameBlock struct {
	el *etree.Element
}

// NewNameBlock wraps el.
func NewNameBlock(el *etree.Element) *NameBlock {
	return &NameBlock{el: el}
}

// Element returns the wrapped element.
func (b *NameBlock) Element() *etree.Element {
	return b.el
}

// Name returns the trimmed TermNameString text, or "" when absent.
func (b *NameBlock) Name() string {
	if el := b.Find(KindTermNameString); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// Children returns the child elements in document order.
func (b *NameBlock) Children() []*etree.Element {
	return b.el.ChildElements()
}

// Find returns the first child of kind, or nil.
func (b *NameBlock) Find(kind Kind) *etree.Element {
	for _, child := range b.el.ChildElements() {
		if KindOf(child) == kind {
			return child
		}
	}
	return nil
}

// FindAll returns every child of kind.
func (b *NameBlock) FindAll(kind Kind) []*etree.Element {
	var out []*etree.Element
	for _, child := range b.el.ChildElements() {
		if KindOf(child) == kind {
			out = append(out, child)
		}
	}
	return out
}

// InsertAfterLastOfKind inserts el after the run of children that starts at
// the first child of kind start and continues across children whose kind is
// one of across. It reports false when no child of kind start exists.
func (b *NameBlock) InsertAfterLastOfKind(el *etree.Element, start Kind, across ...Kind) bool {
	children := b.el.ChildElements()
	last := -1
	for i, child := range children {
		if KindOf(child) == start {
			last = i
			break
		}
	}
	if last < 0 {
		return false
	}
	for i := last + 1; i < len(children); i++ {
		if !KindOf(children[i]).in(across) {
			break
		}
		last = i
	}
	b.el.InsertChildAt(children[last].Index()+1, el)
	return true
}

// Replace puts el where old is. old must be a child of the block.
func (b *NameBlock) Replace(old, el *etree.Element) {
	idx := old.Index()
	b.el.RemoveChildAt(idx)
	b.el.InsertChildAt(idx, el)
}

// InsertBeforeFirstOfKind inserts el immediately before the first child after
// anchor whose kind is one of kinds, or appends it when none follows.
func (b *NameBlock) InsertBeforeFirstOfKind(el, anchor *etree.Element, kinds ...Kind) {
	children := b.el.ChildElements()
	seen := anchor == nil
	for _, child := range children {
		if !seen {
			seen = child == anchor
			continue
		}
		if KindOf(child).in(kinds) {
			b.el.InsertChildAt(child.Index(), el)
			return
		}
	}
	b.el.AddChild(el)
}

// Remove drops el from the block.
func (b *NameBlock) Remove(el *etree.Element) {
	b.el.RemoveChild(el)
}

// Touch sets DateLastModified to date, appending the element when absent.
func (b *NameBlock) Touch(date string) {
	el := b.Find(KindLastModified)
	if el == nil {
		el = b.el.CreateElement("DateLastModified")
	}
	el.SetText(date)
}
