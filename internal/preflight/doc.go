// Package preflight checks that the environment can support an import before
// the operator is offered a run: the drop directory is readable, the log
// directory is writable, the database opens and grants the import
// permissions, and ffprobe is present when it is the selected probe backend.
package preflight
