package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sys/unix"

	"stitch/internal/config"
	"stitch/internal/deps"
)

const openAICheckTimeout = 30 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOpenAIKey reports whether an API key is configured.
func CheckOpenAIKey(apiKey string) Result {
	const name = "OpenAI API key"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing (set transcription.openai_api_key or OPENAI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckOpenAI verifies that the API is reachable and the key is accepted by
// listing models. It makes a single attempt.
func CheckOpenAI(ctx context.Context, apiKey, baseURL string) Result {
	const name = "OpenAI API"
	if keyCheck := CheckOpenAIKey(apiKey); !keyCheck.Passed {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, openAICheckTimeout)
	defer cancel()

	clientCfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	client := openai.NewClientWithConfig(clientCfg)
	if _, err := client.ListModels(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckSystemDeps evaluates the binaries the configured source needs.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for audio inspection",
			VersionArgs: []string{"-version"},
		},
	}
	switch strings.ToLower(cfg.Transcription.Source) {
	case "whisperx":
		requirements = append(requirements,
			deps.Requirement{
				Name:        "FFmpeg",
				Command:     cfg.FFmpegBinary(),
				Description: "Required to extract chunk audio",
				VersionArgs: []string{"-version"},
			},
			deps.Requirement{
				Name:        "uvx",
				Command:     cfg.UVXBinary(),
				Description: "Required for WhisperX-driven transcription",
				VersionArgs: []string{"--version"},
			},
		)
	case "openai":
		requirements = append(requirements, deps.Requirement{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to extract chunk audio",
			VersionArgs: []string{"-version"},
		})
	default:
		requirements[0].Optional = true
	}
	return deps.CheckBinaries(ctx, requirements)
}

// summarizeAPIError produces a human-readable summary for API check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return "auth failed (invalid API key)"
		}
		return fmt.Sprintf("API error (%d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403 {
			return "auth failed (invalid API key)"
		}
		return fmt.Sprintf("request failed (%d)", reqErr.HTTPStatusCode)
	}
	return err.Error()
}
