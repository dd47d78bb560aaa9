package glossary

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
)

func parseBlock(t *testing.T, xml string) *NameBlock {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return NewNameBlock(doc.Root())
}

func childTags(b *NameBlock) []string {
	var tags []string
	for _, child := range b.Children() {
		tags = append(tags, child.Tag)
	}
	return tags
}

func TestKindOf(t *testing.T) {
	b := parseBlock(t, `<TermName><TermNameString/><TermPronunciation/><PronunciationResource/>`+
		`<TranslationResource/><MediaLink/><TermNameStatus/><Comment/><DateLastModified/></TermName>`)
	want := []Kind{KindTermNameString, KindPronunciation, KindPronunciationResource,
		KindTranslationResource, KindMediaLink, KindOther, KindComment, KindLastModified}
	var got []Kind
	for _, child := range b.Children() {
		got = append(got, KindOf(child))
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestInsertAfterLastOfKindStopsAtOtherElements(t *testing.T) {
	b := parseBlock(t, `<TermName><TermNameString>a</TermNameString><TermPronunciation/>`+
		`<TermNameStatus/><PronunciationResource/></TermName>`)
	ok := b.InsertAfterLastOfKind(etree.NewElement("MediaLink"), KindTermNameString,
		KindPronunciation, KindPronunciationResource, KindTranslationResource)
	if !ok {
		t.Fatal("insert reported no anchor")
	}
	want := []string{"TermNameString", "TermPronunciation", "MediaLink", "TermNameStatus", "PronunciationResource"}
	if got := childTags(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
}

func TestInsertAfterLastOfKindWithoutAnchor(t *testing.T) {
	b := parseBlock(t, `<TermName><TermPronunciation/></TermName>`)
	if b.InsertAfterLastOfKind(etree.NewElement("MediaLink"), KindTermNameString, KindPronunciation) {
		t.Fatal("expected no anchor")
	}
	if got := childTags(b); !reflect.DeepEqual(got, []string{"TermPronunciation"}) {
		t.Fatalf("block changed: %v", got)
	}
}

func TestInsertAfterLastOfKindKeepsWhitespace(t *testing.T) {
	b := parseBlock(t, "<TermName>\n  <TermNameString>a</TermNameString>\n  <Comment/>\n</TermName>")
	b.InsertAfterLastOfKind(etree.NewElement("MediaLink"), KindTermNameString)
	want := []string{"TermNameString", "MediaLink", "Comment"}
	if got := childTags(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
}

func TestReplaceAndInsertBefore(t *testing.T) {
	b := parseBlock(t, `<TermName><TermNameString>a</TermNameString><MediaLink/>`+
		`<TermNameStatus/><DateLastModified/></TermName>`)
	replacement := etree.NewElement("MediaLink")
	replacement.CreateAttr("new", "yes")
	b.Replace(b.Find(KindMediaLink), replacement)
	b.InsertBeforeFirstOfKind(etree.NewElement("Comment"), replacement, KindComment, KindLastModified)

	want := []string{"TermNameString", "MediaLink", "TermNameStatus", "Comment", "DateLastModified"}
	if got := childTags(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	if b.Find(KindMediaLink).SelectAttrValue("new", "") != "yes" {
		t.Fatal("link not replaced")
	}
}

func TestInsertBeforeAppendsWhenNothingFollows(t *testing.T) {
	b := parseBlock(t, `<TermName><Comment/><TermNameString>a</TermNameString><MediaLink/></TermName>`)
	b.InsertBeforeFirstOfKind(etree.NewElement("Note"), b.Find(KindMediaLink), KindComment)
	want := []string{"Comment", "TermNameString", "MediaLink", "Note"}
	if got := childTags(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
}

func TestTouch(t *testing.T) {
	b := parseBlock(t, `<TermName><TermNameString>a</TermNameString></TermName>`)
	b.Touch("2026-03-10")
	b.Touch("2026-03-11")
	dates := b.FindAll(KindLastModified)
	if len(dates) != 1 || dates[0].Text() != "2026-03-11" {
		t.Fatalf("unexpected dates %v", childTags(b))
	}
	if b.Name() != "a" {
		t.Fatalf("Name = %q", b.Name())
	}
}
