// Package textutil provides text helpers shared by the merge, cleanup and
// rendering stages.
//
// The primary use cases are:
//   - Normalizing tokens for comparison (Unicode NFKC, case folding,
//     punctuation stripped)
//   - Greedy and balanced line wrapping for subtitle cues
//   - Sanitizing filenames and path segments for safe filesystem use
package textutil
