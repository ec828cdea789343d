package ffprobe

import (
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2,
     "channel_layout": "stereo", "duration": "61.5",
     "tags": {"language": "eng", "title": "Main"}, "disposition": {"default": 1}},
    {"index": 2, "codec_type": "audio", "codec_name": "ac3", "sample_rate": "48000", "channels": 6,
     "tags": {"language": "spa"}, "disposition": {"default": 0}}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 3, "duration": "62.000", "size": "1000", "format_name": "matroska,webm"}
}`

func TestParseDecodesStreams(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	audio := result.AudioStreams()
	if audio[0].Index != 1 || audio[1].Index != 2 {
		t.Fatalf("unexpected audio order: %+v", audio)
	}
	if audio[0].SampleRateHz() != 48000 {
		t.Fatalf("unexpected sample rate %d", audio[0].SampleRateHz())
	}
	if audio[0].Title() != "Main" || !audio[0].IsDefault() || audio[1].IsDefault() {
		t.Fatalf("unexpected tags/disposition: %+v", audio)
	}
	if result.DurationSeconds() != 62 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size %d", result.SizeBytes())
	}
	if string(result.RawJSON()) != samplePayload {
		t.Fatalf("raw payload not preserved")
	}
}

func TestDurationFallsBackToAudioStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "10.5"},
			{CodecType: "audio", Duration: "12.25"},
			{CodecType: "video", Duration: "99"},
		},
		Format: Format{Duration: "bad"},
	}
	if got := result.DurationSeconds(); got != 12.25 {
		t.Fatalf("expected 12.25, got %v", got)
	}
}

func TestHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", SampleRate: "n/a", Duration: "-3"}},
		Format:  Format{Size: "-1"},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.Streams[0].SampleRateHz() != 0 {
		t.Fatalf("expected sample rate 0")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
