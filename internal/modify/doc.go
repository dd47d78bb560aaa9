// Package modify runs batch edits over CDR documents. A Job names the
// documents and rewrites each one; the Driver owns the checkout, save, and
// unlock cycle so every document is released whatever the job does.
package modify
