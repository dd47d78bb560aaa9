// Package clip models one pronunciation recording read from a manifest row:
// the owning glossary term name document, the term and language it
// pronounces, the clip bytes, and the provenance needed to record it.
package clip
