// Package cdrstore persists the slice of the CDR the audio import touches in
// SQLite: documents with their versions and binary payloads, checkout locks,
// the ctl settings table, the query-term link index, and per-user action
// grants.
//
// Store implements cdr.DocumentService, cdr.Settings, and cdr.LinkIndex; the
// Session method returns a cdr.Session for one account. Saves apply their
// validate/version/publish/unlock flags inside a single transaction so a
// rejected save leaves the document exactly as it was.
package cdrstore
