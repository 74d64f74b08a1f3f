package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thruflo/marquee/internal/app"
	"github.com/thruflo/marquee/internal/config"
	"github.com/thruflo/marquee/internal/display"
	"github.com/thruflo/marquee/internal/logging"
	"github.com/thruflo/marquee/internal/tui"
)

var (
	runPlain   bool
	runLogFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the widget in the terminal",
	Long: `Fetch the resource once, then cycle through its lines until interrupted,
re-fetching it every poll interval.

When stdout is a terminal the lines slide in and out of a bordered box.
Otherwise, or with --plain, each line is printed as it is shown.

Example:
  marquee run
  marquee run --resource Info/pending_jobs.txt --dwell 5s
  marquee run --base-url http://localhost:8000/ --plain`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Print lines instead of animating them")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Write diagnostics to this file (the animated display otherwise drops them)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	term := tui.NewTerminal(os.Stdout)
	animated := !runPlain && term.IsTerminal()

	closeLog, err := routeRunLog(logger, runLogFile, animated)
	if err != nil {
		return err
	}
	defer closeLog()

	if !animated {
		return runWriter(ctx, cfg, display.NewWriter(cfg.Display.Container, cmd.OutOrStdout()), logger)
	}
	return runTerminal(ctx, cfg, term, logger)
}

// routeRunLog sends diagnostics to path when one is given. Without a path
// they stay on stderr, except while the animated display owns the terminal,
// where they are dropped.
func routeRunLog(logger *logging.Logger, path string, animated bool) (func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(log.New(f, "", log.LstdFlags))
		return func() { _ = f.Close() }, nil
	}
	if animated {
		logger.SetOutput(log.New(io.Discard, "", 0))
	}
	return func() {}, nil
}

// runWriter runs the widget against a plain surface until ctx is done.
func runWriter(ctx context.Context, cfg *config.Config, surface display.Surface, logger *logging.Logger) error {
	w, err := app.New(cfg, surface, app.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runTerminal(ctx context.Context, cfg *config.Config, term *tui.Terminal, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(cfg.Display.Container, term.Width(), cfg.TransitionDuration())
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(term.Output()))

	w, err := app.New(cfg, tui.NewSurface(cfg.Display.Container, p), app.WithLogger(logger))
	if err != nil {
		return err
	}

	widgetErr := make(chan error, 1)
	go func() {
		widgetErr <- w.Run(ctx)
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	err = <-widgetErr

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("terminal display failed: %w", runErr)
	}
	return nil
}
