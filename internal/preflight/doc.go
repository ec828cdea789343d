// Package preflight provides readiness checks for the binaries, directories
// and credentials a stitch run depends on.
//
// These checks run in two contexts:
//   - "stitch check" prints every result and fails when any required check fails.
//   - "stitch transcribe" and "stitch watch" call RunAll before touching audio
//     so a missing binary is reported before the first chunk is extracted.
//
// Checks are gated by configuration: uvx is only required for the whisperx
// source, and the OpenAI key only for the openai source.
package preflight
