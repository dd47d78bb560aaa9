// Package manifest reads one weekly delivery archive: it locates the
// spreadsheet manifest, interprets each data row through a typed Row view,
// and joins rows with the MP3 members they name to produce clip.AudioClip
// values.
//
// Rows that cannot be turned into clips are reported as *RowError through the
// iteration callback and skipped; only archive-level problems (unreadable zip,
// missing or unreadable manifest) end iteration with an error.
package manifest
