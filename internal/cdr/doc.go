// Package cdr holds the vocabulary shared by every stage that talks to the CDR:
// document identifiers, the document value passed to and from the document
// service, save options, and the narrow interfaces the import consumes from the
// session, document, and settings services.
package cdr
