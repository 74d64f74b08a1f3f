package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/marquee/internal/config"
	"github.com/thruflo/marquee/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
	logLevel   string

	resourcePath string
	baseURL      string
	dwell        time.Duration
	pollInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Cycle through the lines of a polled text file",
	Long: `marquee polls a newline-delimited text resource (pending_jobs.txt by
default) and shows its non-blank lines one at a time, sliding each line in,
holding it for the dwell time and sliding it out before the next one.

Configuration is read from .marquee/config.yaml in the current directory,
or from the file given with --config. Flags override the file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("marquee version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file (default .marquee/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (same as --log-level debug)")
	flags.StringVar(&logLevel, "log-level", "warn", "Minimum level of diagnostics: debug, info, warn or error")
	flags.StringVar(&resourcePath, "resource", "", "Resource to poll (overrides resource.path)")
	flags.StringVar(&baseURL, "base-url", "", "Fetch the resource over HTTP relative to this URL")
	flags.DurationVar(&dwell, "dwell", 0, "How long each line stays visible")
	flags.DurationVar(&pollInterval, "interval", 0, "How often the resource is re-fetched")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, false)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg, err = config.LoadConfig(cwd)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("resource") {
		cfg.Resource.Path = resourcePath
	}
	if flags.Changed("base-url") {
		cfg.Resource.BaseURL = baseURL
	}
	if flags.Changed("dwell") {
		cfg.Display.DwellDurationMs = int(dwell / time.Millisecond)
	}
	if flags.Changed("interval") {
		cfg.Poll.IntervalMs = int(pollInterval / time.Millisecond)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the command logger at the level chosen by --log-level,
// or debug with --verbose.
func newLogger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New()
	logger.SetLevel(level)
	return logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
