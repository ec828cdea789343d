// Package pipeline wires the stitch stages into runs.
//
// A run probes the audio, plans overlapping chunks, transcribes them through a
// hypothesis.Source (optionally via the on-disk cache), merges the chunk
// hypotheses, groups and cleans the words into cues, splits the cues into
// readable segments, writes each configured output format and grades the
// result. Stages carries the pure part of that sequence so recorded
// hypotheses can be replayed without audio.
//
// Component option structs are built from config.Config by the helpers in
// options.go; the source factory lives in source.go.
package pipeline
