// Package pipeline runs one glossary audio import: permission check, archive
// selection, manifest reading, aggregation, Media saves, and glossary linking,
// collecting everything into a run report.
package pipeline
