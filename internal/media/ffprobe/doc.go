// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes a previously captured ffprobe payload
//
// Helper methods on Result expose the audio streams and the media duration
// the transcription pipeline plans chunks against.
package ffprobe
