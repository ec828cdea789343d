package audio

import (
	"testing"

	"stitch/internal/media/ffprobe"
)

func TestSelectPrefersRequestedLanguage(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", Channels: 6, Tags: map[string]string{"language": "spa"}, Disposition: map[string]int{"default": 1}},
		{Index: 2, CodecType: "audio", Channels: 2, Tags: map[string]string{"language": "eng"}},
	}
	sel := Select(streams, "en")
	if sel.Ordinal != 1 || sel.Stream.Index != 2 {
		t.Fatalf("expected english stream (ordinal 1), got %+v", sel)
	}
	if !sel.Matched || sel.Language != "en" {
		t.Fatalf("expected matched english selection, got %+v", sel)
	}

	sel = Select(streams, "spanish")
	if sel.Ordinal != 0 || !sel.Matched {
		t.Fatalf("expected spanish stream, got %+v", sel)
	}
}

func TestSelectSkipsCommentary(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Channels: 2, Tags: map[string]string{"language": "eng", "title": "Director's Commentary"}, Disposition: map[string]int{"default": 1}},
		{Index: 2, CodecType: "audio", Channels: 6, Tags: map[string]string{"language": "eng", "title": "Main"}},
		{Index: 3, CodecType: "audio", Channels: 2, Tags: map[string]string{"language": "eng"}, Disposition: map[string]int{"visual_impaired": 1}},
	}
	sel := Select(streams, "en")
	if sel.Stream.Index != 2 {
		t.Fatalf("expected main programme track, got %+v", sel)
	}
}

func TestSelectFallsBackWhenLanguageMissing(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "audio", Channels: 2},
		{Index: 1, CodecType: "audio", Channels: 2, Disposition: map[string]int{"default": 1}},
	}
	sel := Select(streams, "fr")
	if sel.Ordinal != 1 {
		t.Fatalf("expected default-flagged stream, got %+v", sel)
	}
	if sel.Matched {
		t.Fatalf("expected unmatched selection")
	}
}

func TestSelectPrefersEarlierOnTie(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 3, CodecType: "audio", ChannelLayout: "stereo"},
		{Index: 4, CodecType: "audio", ChannelLayout: "stereo"},
	}
	if sel := Select(streams, "en"); sel.Ordinal != 0 {
		t.Fatalf("expected first stream, got %+v", sel)
	}
}

func TestSelectWithoutAudio(t *testing.T) {
	sel := Select([]ffprobe.Stream{{CodecType: "video"}}, "en")
	if sel.Found() || sel.Label() != "" {
		t.Fatalf("expected no selection, got %+v", sel)
	}
}

func TestChannelCountFromLayout(t *testing.T) {
	cases := map[string]int{"mono": 1, "stereo": 2, "5.1(side)": 6, "7.1": 8, "2.1": 3, "": 0}
	for layout, want := range cases {
		if got := channelCount(ffprobe.Stream{ChannelLayout: layout}); got != want {
			t.Fatalf("layout %q: expected %d, got %d", layout, want, got)
		}
	}
}

func TestLabel(t *testing.T) {
	sel := Select([]ffprobe.Stream{{Index: 2, CodecType: "audio", CodecName: "aac", Channels: 2, Tags: map[string]string{"language": "eng", "title": "Main"}}}, "en")
	if got := sel.Label(); got != "#2 | en | aac | 2ch | Main" {
		t.Fatalf("unexpected label %q", got)
	}
}
