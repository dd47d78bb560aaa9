// Package deps reports whether the external binaries glossaudio can call are
// installed.
package deps
