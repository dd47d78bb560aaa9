// Package aggregate collapses the clips of every archive in a batch to one
// clip per (document, term name, language), keeping the clip from the latest
// archive.
package aggregate

import (
	"log/slog"
	"sort"

	"glossaudio/internal/clip"
	"glossaudio/internal/logging"
)

type slot struct {
	index int
	clip  *clip.AudioClip
}

// Aggregator owns every surviving clip of a batch.
type Aggregator struct {
	slots    map[clip.Key]*slot
	byDoc    map[int][]clip.Key
	replaced int
	logger   *slog.Logger
}

// New returns an empty aggregator. A nil logger discards output.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{
		slots:  make(map[clip.Key]*slot),
		byDoc:  make(map[int][]clip.Key),
		logger: logger,
	}
}

// Add offers a clip read from the archive at position index of the batch.
// A clip never displaces one from a later archive; within the same archive
// the later row wins.
func (a *Aggregator) Add(index int, c *clip.AudioClip) {
	if c == nil {
		return
	}
	key := c.Key()
	current, ok := a.slots[key]
	if !ok {
		a.slots[key] = &slot{index: index, clip: c}
		a.byDoc[key.DocID] = append(a.byDoc[key.DocID], key)
		return
	}

	a.replaced++
	winner, loser := c, current.clip
	if index < current.index {
		winner, loser = current.clip, c
	} else {
		current.index = index
		current.clip = c
	}
	a.logger.Info("clip overridden by later delivery",
		logging.String("key", key.String()),
		logging.String("kept_archive", winner.Archive),
		logging.Int("kept_row", winner.Row),
		logging.String("dropped_archive", loser.Archive),
		logging.Int("dropped_row", loser.Row),
	)
}

// Docs returns the glossary document ids with at least one clip, ascending.
func (a *Aggregator) Docs() []int {
	ids := make([]int, 0, len(a.byDoc))
	for id := range a.byDoc {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clips returns the surviving clips for docID in order of first appearance.
func (a *Aggregator) Clips(docID int) []*clip.AudioClip {
	keys := a.byDoc[docID]
	out := make([]*clip.AudioClip, 0, len(keys))
	for _, key := range keys {
		out = append(out, a.slots[key].clip)
	}
	return out
}

// All returns every surviving clip, grouped by ascending document id.
func (a *Aggregator) All() []*clip.AudioClip {
	out := make([]*clip.AudioClip, 0, len(a.slots))
	for _, id := range a.Docs() {
		out = append(out, a.Clips(id)...)
	}
	return out
}

// Len returns the number of surviving clips.
func (a *Aggregator) Len() int {
	return len(a.slots)
}

// Replaced returns how many clips were dropped in favour of another.
func (a *Aggregator) Replaced() int {
	return a.replaced
}

// Drop removes every clip of docID and returns how many were removed.
func (a *Aggregator) Drop(docID int) int {
	keys := a.byDoc[docID]
	for _, key := range keys {
		delete(a.slots, key)
	}
	delete(a.byDoc, docID)
	return len(keys)
}
