// Package merge reconciles the word streams of overlapping audio chunks into a
// single timeline.
//
// Two chunks share an overlap window. The tail of the earlier stream and the
// head of the later stream both transcribe that window, so the merger has to
// pick one rendition of every overlapping word without duplicating or losing
// speech. Strategies are a closed set selected by name:
//
//   - contiguous: keep the longest run of identical tokens and splice around it
//   - lcs: align normalized tokens with a longest common subsequence and keep,
//     for each aligned pair, the token recorded farther from its chunk edge
//   - none: plain concatenation, useful for diagnostics
//
// Degenerate overlaps (one side has no words in the window) fall back to a
// start-ordered concatenation and never fail.
package merge
