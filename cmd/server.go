package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/api"
	"github.com/ziadkadry99/proposal-engine/internal/config"
	"github.com/ziadkadry99/proposal-engine/internal/db"
	"github.com/ziadkadry99/proposal-engine/internal/history"
	"github.com/ziadkadry99/proposal-engine/internal/preview"
	"github.com/ziadkadry99/proposal-engine/internal/server"
)

// sweepInterval is how often idle sessions are looked for.
const sweepInterval = 10 * time.Minute

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the proposal editing server",
	Long: `Starts the editing server: a REST API, the editor page with live preview
over a websocket, and per-visitor isolated workspaces seeded from the
configured template.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	maxAge, err := cfg.SessionMaxAge()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(cfg.Server.DataDir, "proposal.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		DataDir:  cfg.Server.DataDir,
		AllowAll: cfg.Server.AllowAllOrigins,
	}, database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := registerAllRoutes(srv, cfg)
	if maxAge > 0 {
		go sessions.RunSweeper(ctx, sweepInterval, maxAge)
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		srv.Shutdown(context.Background())
	}()

	fmt.Fprintf(os.Stderr, "proposal server v%s starting on port %d\n", Version, cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  Template: %s\n", cfg.TemplatePath)
	if maxAge > 0 {
		fmt.Fprintf(os.Stderr, "  Idle sessions removed after %s\n", maxAge)
	}

	return srv.Start()
}

// registerAllRoutes wires the editing API, edit history and preview.
func registerAllRoutes(srv *server.Server, cfg *config.Config) *api.Sessions {
	store := history.NewStore(srv.Database())
	sessions := api.NewSessions(filepath.Join(cfg.Server.DataDir, "sessions"), cfg.SessionOptions(), store)

	h := &api.Handler{
		Sessions: sessions,
		History:  store,
		Defaults: cfg.Fields(),
	}
	if x, err := newExtractor(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: page extraction disabled: %v\n", err)
	} else {
		h.Builder = x
	}
	api.RegisterRoutes(srv.API(), h)

	// Preview websocket stays outside the request timeout.
	preview.New(sessions, cfg.Fields()).RegisterRoutes(srv.Router())

	return sessions
}
