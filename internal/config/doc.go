// Package config loads, normalizes, and validates stitch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and HF_TOKEN. Per-language continuation and clause word lists
// are filled in from the transcription language when left empty.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical selector names, and clear validation errors.
package config
