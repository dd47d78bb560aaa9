package clip

import "fmt"

// AudioClip is one manifest row joined with the clip bytes it names.
type AudioClip struct {
	DocID    int
	TermName string
	Language Language
	Filename string
	Bytes    []byte
	// Duration is the playback length in whole seconds.
	Duration int
	// Created is the archive entry date, YYYY-MM-DD.
	Created string
	Archive string
	// MediaID is the existing Media document named by the manifest, or
	// the document the recorder saved the clip as.
	MediaID int
	Creator string
	Notes   string
	Row     int
}

// Key identifies the slot a clip fills. Within a batch one clip survives per key.
type Key struct {
	DocID    int
	TermName string
	Language Language
}

func (k Key) String() string {
	return fmt.Sprintf("CDR%d/%s/%s", k.DocID, k.TermName, k.Language)
}

// Key returns the aggregation key of the clip.
func (c *AudioClip) Key() Key {
	return Key{DocID: c.DocID, TermName: c.TermName, Language: c.Language}
}

// Describe renders the clip as used in report rows: "CDR501 (alpha [en])".
func (c *AudioClip) Describe() string {
	return fmt.Sprintf("CDR%d (%s [%s])", c.DocID, c.TermName, c.Language)
}
