package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thruflo/marquee/internal/lines"
	"github.com/thruflo/marquee/internal/loader"
)

var linesCmd = &cobra.Command{
	Use:   "lines",
	Short: "Fetch the resource once and print the lines that would be shown",
	Long: `Fetch the resource once, drop blank lines and print the result with the
index each line would have in the display cycle.

Example:
  marquee lines
  marquee lines --base-url http://localhost:8000/`,
	Args: cobra.NoArgs,
	RunE: runLines,
}

func init() {
	rootCmd.AddCommand(linesCmd)
}

func runLines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := loader.NewSource(cfg.Resource)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	ld := loader.New(src, lines.NewState(), cfg.PollInterval(), loader.WithLogger(logger))
	parsed, err := ld.Fetch(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(parsed) == 0 {
		fmt.Fprintf(out, "%s has no lines to show\n", src.Name())
		return nil
	}
	for i, l := range parsed {
		fmt.Fprintf(out, "%3d  %s\n", i, l)
	}
	return nil
}
