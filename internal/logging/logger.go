package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"stitch/internal/config"
)

// LogFileName is the file NewFromConfig appends to inside the log directory.
const LogFileName = "stitch.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// Outputs lists destinations: "stdout", "stderr" or file paths.
	// Empty means stderr.
	Outputs []string
	// AddSource records file:line on every entry. Debug level implies it.
	AddSource bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	out, err := openOutputs(opts.Outputs)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.AddSource || level.Level() <= slog.LevelDebug

	if format == "json" {
		return slog.New(newJSONHandler(out, level, addSource)), nil
	}
	return slog.New(newPrettyHandler(out, level, addSource)), nil
}

// NewFromConfig builds the logger for a CLI invocation. Entries go to stderr,
// keeping stdout free for rendered output, and are appended to LogFileName
// when a log directory is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: outputs,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openOutputs resolves destinations into one writer. Duplicates are
// ignored; parent directories of log files are created.
func openOutputs(outputs []string) (io.Writer, error) {
	var (
		seen    []string
		writers []io.Writer
	)
	for _, dest := range outputs {
		dest = strings.TrimSpace(dest)
		if dest == "" || slices.Contains(seen, dest) {
			continue
		}
		seen = append(seen, dest)
		switch dest {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", dest, err)
			}
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
