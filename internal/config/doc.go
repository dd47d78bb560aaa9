// Package config loads, normalizes, and validates glossaudio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GLOSSAUDIO_DROP_DIR. The Config type centralizes every knob the CLI and the
// confirmation server need, so the drop directory, the CDR database, and the
// probe backend are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
