// Package probe measures the playback length of pronunciation clips.
//
// Native decodes MPEG audio frame headers in process and sums their
// durations. FFprobe hands the bytes to an external ffprobe binary. Both
// round to whole seconds and fail with services.ErrProbeFailed when the
// payload is not recognizable audio.
package probe
