// Package whisperx runs WhisperX over individual audio chunks and returns
// chunk-local word tokens.
//
// This package handles:
//   - Chunk extraction with ffmpeg (mono 16kHz WAV)
//   - WhisperX invocation through uvx
//   - Word token recovery from the WhisperX JSON, interpolating timings for
//     words the aligner could not place
//
// Configuration options (model, CUDA, VAD method) are passed via Config.
package whisperx
