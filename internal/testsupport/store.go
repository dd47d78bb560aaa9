package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"glossaudio/internal/cdr"
	"glossaudio/internal/cdrstore"
	"glossaudio/internal/config"
)

// ImportPermissions lists every grant an audio import needs.
var ImportPermissions = []cdr.Permission{
	{Action: cdr.ActionAddDocument, DocType: cdr.DocTypeMedia},
	{Action: cdr.ActionModifyDocument, DocType: cdr.DocTypeMedia},
	{Action: cdr.ActionModifyDocument, DocType: cdr.DocTypeGlossaryTermName},
	{Action: cdr.ActionAudioImport},
}

// MustOpenStore opens a cdrstore.Store acting as the configured user and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cdrstore.Store {
	t.Helper()

	store, err := cdrstore.Open(cfg)
	if err != nil {
		t.Fatalf("cdrstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// GrantImport gives the store's user every permission the import checks.
func GrantImport(t testing.TB, store *cdrstore.Store) {
	t.Helper()

	if err := store.Grant(context.Background(), store.User(), ImportPermissions...); err != nil {
		t.Fatalf("grant: %v", err)
	}
}

// GlossaryName describes a glossary term name document fixture.
type GlossaryName struct {
	English       string
	Pronunciation string
	Spanish       []string
}

// Title returns the document title in the "english;spanish" form the CDR filter builds.
func (g GlossaryName) Title() string {
	parts := append([]string{g.English}, g.Spanish...)
	return strings.Join(parts, ";")
}

// XML renders the fixture as a GlossaryTermName document.
func (g GlossaryName) XML() []byte {
	doc := etree.NewDocument()
	root := doc.CreateElement(cdr.DocTypeGlossaryTermName)
	root.CreateAttr("xmlns:cdr", cdr.Namespace)

	english := root.CreateElement("TermName")
	english.CreateElement("TermNameString").SetText(g.English)
	if g.Pronunciation != "" {
		english.CreateElement("TermPronunciation").SetText(g.Pronunciation)
	}
	english.CreateElement("TermNameStatus").SetText("Approved")

	for _, name := range g.Spanish {
		spanish := root.CreateElement("TranslatedName")
		spanish.CreateAttr("language", "es")
		spanish.CreateElement("TermNameString").SetText(name)
		spanish.CreateElement("TranslatedNameStatus").SetText("Approved")
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		panic(fmt.Sprintf("render glossary fixture: %v", err))
	}
	return out
}

// SeedGlossary stores the fixture as a new unlocked GlossaryTermName document.
func SeedGlossary(t testing.TB, store *cdrstore.Store, name GlossaryName) int {
	t.Helper()

	id, err := store.Create(context.Background(), &cdr.Document{
		DocType: cdr.DocTypeGlossaryTermName,
		Title:   name.Title(),
		XML:     name.XML(),
	}, cdr.SaveOptions{Version: true, Unlock: true, Comment: "fixture"})
	if err != nil {
		t.Fatalf("seed glossary %q: %v", name.English, err)
	}
	return id
}

// SeedDocument stores raw XML under docType without validation.
func SeedDocument(t testing.TB, store *cdrstore.Store, docType, title string, xml, blob []byte) int {
	t.Helper()

	id, err := store.Create(context.Background(), &cdr.Document{
		DocType: docType,
		Title:   title,
		XML:     xml,
		Blob:    blob,
	}, cdr.SaveOptions{Version: true, Unlock: true, Comment: "fixture"})
	if err != nil {
		t.Fatalf("seed %s %q: %v", docType, title, err)
	}
	return id
}

// MustGet loads a document or fails the test.
func MustGet(t testing.TB, store *cdrstore.Store, id int) *cdr.Document {
	t.Helper()

	doc, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", cdr.FormatID(id), err)
	}
	return doc
}
