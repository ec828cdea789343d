// Package transcript defines the value types that flow between the stitch
// pipeline stages: audio chunks, per-chunk raw hypotheses, merged words and
// subtitle segments.
//
// All values are treated as immutable once produced. Stages return new slices
// instead of editing their input.
package transcript
