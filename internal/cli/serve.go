package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thruflo/marquee/internal/config"
	"github.com/thruflo/marquee/internal/server"
	"github.com/thruflo/marquee/web"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser widget and the resource directory over HTTP",
	Long: `Serve the directory holding the resource, the browser version of the widget
and a JSON view of the current lines at /api/lines.

Point a browser source (for example in OBS) at http://localhost:<port>/.

Example:
  marquee serve --dir ./Info
  marquee serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 8000)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "Directory to serve the resource from")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Server == nil {
		cfg.Server = config.DefaultServerConfig()
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("dir") {
		cfg.Server.Dir = serveDir
	}
	if err := config.ValidateServerConfig(cfg.Server); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	srv, err := server.NewServerFromConfig(cfg, web.GetAssetsWithBase(cwd), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://localhost:%d/\n", cfg.Server.Dir, cfg.Server.Port)
	return srv.Start(ctx)
}
