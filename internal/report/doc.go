// Package report accumulates the (identifier, message) rows of an import run
// in processing order and renders them as a console table or an HTML table.
package report
