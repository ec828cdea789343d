package audio

import (
	"strconv"
	"strings"

	"stitch/internal/language"
	"stitch/internal/media/ffprobe"
)

// Selection describes the audio stream chosen for transcription.
type Selection struct {
	Stream   ffprobe.Stream
	Ordinal  int
	Language string
	Matched  bool
}

// Found reports whether any audio stream was available.
func (s Selection) Found() bool {
	return s.Ordinal >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Stream, s.Language)
}

// Select returns the audio stream best suited to speech recognition in lang.
// When no stream carries a matching language tag the best remaining stream is
// used and Matched is false. Ordinal is -1 when there are no audio streams.
func Select(streams []ffprobe.Stream, lang string) Selection {
	want := language.ToISO2(lang)
	candidates := buildCandidates(streams, want)
	if len(candidates) == 0 {
		return Selection{Ordinal: -1}
	}

	best := candidates[0]
	bestScore := scoreCandidate(best)
	for _, cand := range candidates[1:] {
		if score := scoreCandidate(cand); score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return Selection{
		Stream:   best.stream,
		Ordinal:  best.order,
		Language: best.language,
		Matched:  best.matched,
	}
}

type candidate struct {
	stream         ffprobe.Stream
	order          int
	language       string
	matched        bool
	secondary      bool
	channels       int
	defaultFlagged bool
}

func scoreCandidate(cand candidate) float64 {
	score := 0.0
	if cand.matched {
		score += 1000
	}
	if !cand.secondary {
		score += 500
	}
	if cand.defaultFlagged {
		score += 100
	}
	switch {
	case cand.channels >= 6:
		score += 30
	case cand.channels >= 2:
		score += 20
	case cand.channels == 1:
		score += 10
	}
	// Earlier tracks win ties.
	score -= float64(cand.order) * 0.1
	return score
}

func buildCandidates(streams []ffprobe.Stream, want string) []candidate {
	result := make([]candidate, 0, len(streams))
	order := 0
	for _, stream := range streams {
		if !stream.IsAudio() {
			continue
		}
		lang := language.ToISO2(language.ExtractFromTags(stream.Tags))
		cand := candidate{
			stream:         stream,
			order:          order,
			language:       lang,
			matched:        want != "" && lang == want,
			secondary:      isSecondary(stream),
			channels:       channelCount(stream),
			defaultFlagged: stream.IsDefault(),
		}
		result = append(result, cand)
		order++
	}
	return result
}

var secondaryKeywords = []string{
	"commentary",
	"comment",
	"director",
	"description",
	"descriptive",
	"visually impaired",
	"narration",
}

func isSecondary(stream ffprobe.Stream) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	title := strings.ToLower(stream.Title())
	if title == "" {
		return false
	}
	for _, keyword := range secondaryKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "5.1"):
		return 6
	}
	if strings.Contains(layout, ".") {
		total := 0
		for _, part := range strings.Split(layout, ".") {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		return total
	}
	return 0
}

func formatStreamSummary(stream ffprobe.Stream, lang string) string {
	parts := make([]string, 0, 4)
	parts = append(parts, "#"+strconv.Itoa(stream.Index))
	if lang != "" {
		parts = append(parts, lang)
	}
	if stream.CodecName != "" {
		parts = append(parts, stream.CodecName)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := stream.Title(); title != "" {
		parts = append(parts, title)
	}
	return strings.Join(parts, " | ")
}
