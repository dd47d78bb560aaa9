// Package web serves the confirmation form and run report over HTTP. GET /
// lists the archives a run would process, POST /run imports them and renders
// the report table.
package web
