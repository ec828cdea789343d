package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stitch/internal/config"
	"stitch/internal/hypcache"
	"stitch/internal/hypothesis"
	"stitch/internal/logging"
	"stitch/internal/pipeline"
	"stitch/internal/reports"
	"stitch/internal/services"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type commandContext struct {
	configFlag *string
	outputFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, outputFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		outputFlag: outputFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "configure", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "configure", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "configure", "init logger", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) outputFormat() (string, error) {
	value := outputText
	if c.outputFlag != nil {
		value = strings.ToLower(strings.TrimSpace(*c.outputFlag))
	}
	switch value {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return value, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "", "output", fmt.Sprintf("unsupported format %q (expected text, json or yaml)", value), nil)
	}
}

// openReports returns nil when report history is disabled.
func (c *commandContext) openReports(cfg *config.Config) (*reports.Store, error) {
	if cfg == nil || !cfg.Reports.Enabled || strings.TrimSpace(cfg.Paths.ReportDB) == "" {
		return nil, nil
	}
	store, err := reports.Open(cfg.Paths.ReportDB)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "report", "open store", cfg.Paths.ReportDB, err)
	}
	return store, nil
}

type runnerOptions struct {
	source  hypothesis.Source
	noCache bool
}

// newRunner wires the hypothesis cache and report store around source. The
// returned cleanup must be called when the runner is no longer used.
func (c *commandContext) newRunner(cfg *config.Config, opts runnerOptions) (*pipeline.Runner, func(), error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, func() {}, err
	}
	var runnerOpts []pipeline.Option
	if cfg.Transcription.CacheEnabled && !opts.noCache {
		runnerOpts = append(runnerOpts, pipeline.WithCache(hypcache.New(cfg.Paths.CacheDir, logger)))
	}
	store, err := c.openReports(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {}
	if store != nil {
		runnerOpts = append(runnerOpts, pipeline.WithReportSink(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Debug("close report store", logging.Error(err))
			}
		}
	}
	runner, err := pipeline.New(cfg, opts.source, logger, runnerOpts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return runner, cleanup, nil
}

// skipConfigLoad is the annotation marking commands that run without a
// loaded configuration.
const skipConfigLoad = "skipConfigLoad"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
