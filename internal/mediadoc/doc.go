// Package mediadoc turns surviving clips into CDR Media documents.
//
// Builder assembles the descriptive record for a new clip and refuses to
// build until every required field is present. Recorder creates a new Media
// document, or replaces the payload of the existing one a manifest row names,
// and records the outcome in the run report.
package mediadoc
