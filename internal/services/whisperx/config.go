package whisperx

import "strconv"

// Config captures runtime settings for WhisperX runs on chunk audio.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3-turbo").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// BatchSize and BeamSize default to 4 and 10.
	BatchSize int
	BeamSize  int
}

const (
	DefaultModel      = "large-v3-turbo"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"

	defaultBatchSize = 4
	defaultBeamSize  = 10

	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"
)

// Chunks are short, so decoding runs greedy at temperature 0 with tight VAD
// thresholds that keep words near chunk edges.
var decodeArgs = []string{
	"--output_format", "json",
	"--vad_onset", "0.08",
	"--vad_offset", "0.07",
	"--temperature", "0.0",
	"--patience", "1.0",
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.VADMethod == "" {
		c.VADMethod = VADMethodSilero
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.BeamSize <= 0 {
		c.BeamSize = defaultBeamSize
	}
	return c
}

// indexArgs point uvx at the wheel index matching the device.
func (c Config) indexArgs() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", cudaIndexURL, "--extra-index-url", pypiIndexURL}
	}
	return []string{"--index-url", pypiIndexURL}
}

func (c Config) modelArgs() []string {
	beam := strconv.Itoa(c.BeamSize)
	return []string{
		"--model", c.Model,
		"--batch_size", strconv.Itoa(c.BatchSize),
		"--beam_size", beam,
		"--best_of", beam,
	}
}

func (c Config) vadArgs() []string {
	args := []string{"--vad_method", c.VADMethod}
	if c.VADMethod == VADMethodPyannote && c.HFToken != "" {
		args = append(args, "--hf_token", c.HFToken)
	}
	return args
}

func (c Config) deviceArgs() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}
