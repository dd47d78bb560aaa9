// Package services defines shared utilities consumed by the import stages and
// the external CDR integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, archive names, and glossary document
//     IDs for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent outcomes (abort the run vs record a report row).
//
// Use these helpers when wiring new stage logic so operational behaviour stays
// uniform across the pipeline.
package services
