package mediadoc_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/beevik/etree"

	"glossaudio/internal/cdr"
	"glossaudio/internal/cdrstore"
	"glossaudio/internal/clip"
	"glossaudio/internal/mediadoc"
	"glossaudio/internal/report"
	"glossaudio/internal/services"
	"glossaudio/internal/testsupport"
)

type fixture struct {
	store    *cdrstore.Store
	report   *report.Report
	glossary int
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	id := testsupport.SeedGlossary(t, store, testsupport.GlossaryName{English: "alpha", Spanish: []string{"alfa"}})
	return fixture{store: store, report: report.New("test", nil), glossary: id}
}

func (f fixture) clip(lang clip.Language) *clip.AudioClip {
	term := "alpha"
	if lang == clip.Spanish {
		term = "alfa"
	}
	return &clip.AudioClip{
		DocID:    f.glossary,
		TermName: term,
		Language: lang,
		Filename: term + ".mp3",
		Bytes:    testsupport.MP3Frames(testsupport.DefaultFrames),
		Duration: 3,
		Created:  "2024-03-04",
		Archive:  "Week_2024_10.zip",
		Row:      2,
	}
}

func textAt(t *testing.T, xml []byte, path string) string {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		t.Fatalf("parse: %v", err)
	}
	el := doc.Root().FindElement(path)
	if el == nil {
		t.Fatalf("%s missing in %s", path, xml)
	}
	return el.Text()
}

func TestSaveCreatesMediaDocument(t *testing.T) {
	f := newFixture(t)
	rec := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{})
	c := f.clip(clip.Spanish)

	id, err := rec.Save(context.Background(), c)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if c.MediaID != id || id == f.glossary {
		t.Fatalf("expected media id on clip, got %d (returned %d)", c.MediaID, id)
	}

	doc := testsupport.MustGet(t, f.store, id)
	if doc.DocType != cdr.DocTypeMedia || doc.Title != "alpha-Spanish; pronunciation; mp3" {
		t.Fatalf("unexpected document %s %q", doc.DocType, doc.Title)
	}
	if !bytes.Equal(doc.Blob, c.Bytes) {
		t.Fatal("blob not stored")
	}
	if got := textAt(t, doc.XML, "./MediaTitle"); got != "alpha-Spanish" {
		t.Fatalf("unexpected media title %q", got)
	}
	if got := textAt(t, doc.XML, "./MediaSource/OriginalSource/Creator"); got != mediadoc.DefaultCreator {
		t.Fatalf("unexpected creator %q", got)
	}
	if got := textAt(t, doc.XML, "./MediaSource/OriginalSource/SourceFilename"); got != "alfa.mp3" {
		t.Fatalf("unexpected filename %q", got)
	}

	versions, _ := f.store.Versions(context.Background(), id)
	if len(versions) != 1 || !versions[0].Publishable || versions[0].Comment != mediadoc.SaveComment {
		t.Fatalf("unexpected versions %#v", versions)
	}
	if lockedBy, _ := f.store.LockedBy(context.Background(), id); lockedBy != "" {
		t.Fatalf("expected unlocked media, got %q", lockedBy)
	}

	rows := f.report.Rows()
	want := "created Media doc for " + cdr.FormatID(f.glossary) + " (alfa [es]) from Week_2024_10.zip"
	if len(rows) != 1 || rows[0].ID != cdr.FormatID(id) || rows[0].Message != want {
		t.Fatalf("unexpected report rows %#v", rows)
	}
}

func TestCreatorPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("manifest override", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.SetSetting(ctx, mediadoc.CreatorGroup, mediadoc.CreatorSetting, "Tier Voice"); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		c := f.clip(clip.English)
		c.Creator = "Row Voice"
		id, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{}).Save(ctx, c)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if got := textAt(t, testsupport.MustGet(t, f.store, id).XML, "./MediaSource/OriginalSource/Creator"); got != "Row Voice" {
			t.Fatalf("creator = %q", got)
		}
	})

	t.Run("ctl setting is cached", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.SetSetting(ctx, mediadoc.CreatorGroup, mediadoc.CreatorSetting, "Tier Voice"); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		rec := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{FallbackCreator: "Config Voice"})
		first, err := rec.Save(ctx, f.clip(clip.English))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := f.store.SetSetting(ctx, mediadoc.CreatorGroup, mediadoc.CreatorSetting, "Changed Voice"); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		second, err := rec.Save(ctx, f.clip(clip.Spanish))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		for _, id := range []int{first, second} {
			if got := textAt(t, testsupport.MustGet(t, f.store, id).XML, "./MediaSource/OriginalSource/Creator"); got != "Tier Voice" {
				t.Fatalf("CDR%d creator = %q", id, got)
			}
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		f := newFixture(t)
		id, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{FallbackCreator: "Config Voice"}).Save(ctx, f.clip(clip.English))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if got := textAt(t, testsupport.MustGet(t, f.store, id).XML, "./MediaSource/OriginalSource/Creator"); got != "Config Voice" {
			t.Fatalf("creator = %q", got)
		}
	})
}

func seedMedia(t *testing.T, f fixture) int {
	t.Helper()
	c := f.clip(clip.English)
	id, err := mediadoc.NewRecorder(f.store, f.store, report.New("seed", nil), mediadoc.Options{}).Save(context.Background(), c)
	if err != nil {
		t.Fatalf("seed media: %v", err)
	}
	return id
}

func TestSaveUpdatesExistingMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mediaID := seedMedia(t, f)
	before := testsupport.MustGet(t, f.store, mediaID)

	c := f.clip(clip.English)
	c.MediaID = mediaID
	c.Bytes = testsupport.MP3Frames(230)
	c.Duration = 6
	id, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{}).Save(ctx, c)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != mediaID {
		t.Fatalf("expected update of CDR%d, got CDR%d", mediaID, id)
	}

	after := testsupport.MustGet(t, f.store, mediaID)
	if !bytes.Equal(after.Blob, c.Bytes) {
		t.Fatal("payload not replaced")
	}
	if !bytes.Equal(after.XML, before.XML) {
		t.Fatalf("metadata changed on update:\n%s", after.XML)
	}
	versions, _ := f.store.Versions(ctx, mediaID)
	if len(versions) != 2 {
		t.Fatalf("expected a second version, got %d", len(versions))
	}
	rows := f.report.Rows()
	if len(rows) != 1 || rows[0].Kind != report.KindUpdated || rows[0].ID != cdr.FormatID(mediaID) {
		t.Fatalf("unexpected report rows %#v", rows)
	}
}

func TestSaveRejectsNonMediaTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := testsupport.MustGet(t, f.store, f.glossary)

	c := f.clip(clip.English)
	c.MediaID = f.glossary
	_, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{}).Save(ctx, c)
	if !errors.Is(err, services.ErrNotAMediaRecord) {
		t.Fatalf("expected ErrNotAMediaRecord, got %v", err)
	}
	after := testsupport.MustGet(t, f.store, f.glossary)
	if !bytes.Equal(before.XML, after.XML) {
		t.Fatal("glossary document changed")
	}
	if lockedBy, _ := f.store.LockedBy(ctx, f.glossary); lockedBy != "" {
		t.Fatalf("glossary left locked by %q", lockedBy)
	}
	if f.report.Len() != 0 {
		t.Fatalf("expected no report rows, got %d", f.report.Len())
	}

	c.MediaID = 999999
	if _, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{}).Save(ctx, c); !errors.Is(err, services.ErrNotAMediaRecord) {
		t.Fatalf("expected missing id to be rejected as not media, got %v", err)
	}
}

type failingSave struct {
	*cdrstore.Store
}

func (failingSave) Save(context.Context, *cdr.Document, cdr.SaveOptions) error {
	return errors.New("disk full")
}

func TestFailedUpdateReleasesLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mediaID := seedMedia(t, f)

	c := f.clip(clip.English)
	c.MediaID = mediaID
	_, err := mediadoc.NewRecorder(failingSave{f.store}, f.store, f.report, mediadoc.Options{}).Save(ctx, c)
	if !errors.Is(err, services.ErrSaveRejected) {
		t.Fatalf("expected ErrSaveRejected, got %v", err)
	}
	if lockedBy, _ := f.store.LockedBy(ctx, mediaID); lockedBy != "" {
		t.Fatalf("expected lock released, held by %q", lockedBy)
	}
}

func TestCreateRejectedForMissingGlossary(t *testing.T) {
	f := newFixture(t)
	c := f.clip(clip.English)
	c.DocID = 424242
	_, err := mediadoc.NewRecorder(f.store, f.store, f.report, mediadoc.Options{}).Save(context.Background(), c)
	if !errors.Is(err, services.ErrSaveRejected) {
		t.Fatalf("expected ErrSaveRejected, got %v", err)
	}
	if c.MediaID != 0 {
		t.Fatalf("media id set on failed clip: %d", c.MediaID)
	}
}
