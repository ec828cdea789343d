// Package audio picks the audio stream a transcription run should listen to.
//
// Candidates are ranked by:
//  1. Language match against the requested transcription language
//  2. Main-programme tracks over commentary and audio description
//  3. The container default flag
//  4. Channel count, as dialogue sits in the centre of multichannel mixes
//
// Ties go to the earlier stream. Selection.Ordinal is the position among
// audio streams, which is what ffmpeg's 0:a:N mapping expects.
package audio
