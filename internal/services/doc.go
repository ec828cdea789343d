// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, chunk indices and source
//     files for logging.
//   - Structured error markers plus the Wrap helper so failures classify into
//     consistent CLI exit codes.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
