package transcript

// Chunk is one overlapping slice of the source audio.
type Chunk struct {
	Index       int   `json:"index"`
	StartSample int64 `json:"start_sample"`
	EndSample   int64 `json:"end_sample"`
	SampleRate  int   `json:"sample_rate"`
	// OverlapWithNext is the overlap in seconds shared with the following
	// chunk. Zero for the last chunk.
	OverlapWithNext float64 `json:"overlap_with_next"`
}

// Start returns the absolute chunk start in seconds.
func (c Chunk) Start() float64 {
	return c.seconds(c.StartSample)
}

// End returns the absolute chunk end in seconds.
func (c Chunk) End() float64 {
	return c.seconds(c.EndSample)
}

// Duration returns the chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.seconds(c.EndSample - c.StartSample)
}

// Samples returns the number of samples covered by the chunk.
func (c Chunk) Samples() int64 {
	return c.EndSample - c.StartSample
}

func (c Chunk) seconds(samples int64) float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(samples) / float64(c.SampleRate)
}
