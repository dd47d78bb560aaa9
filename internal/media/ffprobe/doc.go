// Package ffprobe provides a typed wrapper around ffprobe JSON output for
// audio files.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: audio stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect runs ffprobe and returns the parsed Result.
package ffprobe
