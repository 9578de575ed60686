package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/config"
	"github.com/ziadkadry99/proposal-engine/internal/db"
	"github.com/ziadkadry99/proposal-engine/internal/history"
	"github.com/ziadkadry99/proposal-engine/internal/llm"
	"github.com/ziadkadry99/proposal-engine/internal/session"
	"github.com/ziadkadry99/proposal-engine/internal/vision"
)

// localSession is the history session id of edits made from the CLI.
const localSession = "local"

// historyFileName is the edit history database inside a workspace.
const historyFileName = "history.db"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `proposal init` to create a config file", err)
	}
	if workspace != "" {
		cfg.WorkspaceDir = workspace
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// localWorkspace is the workspace edited by CLI commands together with its
// edit history.
type localWorkspace struct {
	cfg     *config.Config
	engine  *session.Engine
	db      *db.DB
	history *history.Store
}

func (w *localWorkspace) Close() error {
	return w.db.Close()
}

// openWorkspace loads the config and opens the configured workspace. Edits
// are recorded in the workspace history database.
func openWorkspace(ctx context.Context) (*localWorkspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dir := cfg.WorkspaceDir
	if err := os.MkdirAll(filepath.Join(dir, session.AssetsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	database, err := db.Open(filepath.Join(dir, session.AssetsDirName, historyFileName))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	store := history.NewStore(database)
	if err := store.Touch(ctx, localSession, dir); err != nil {
		database.Close()
		return nil, err
	}

	opts := cfg.SessionOptions()
	opts.Recorder = store.Recorder(localSession)
	e, err := session.Open(dir, opts)
	if err != nil {
		database.Close()
		return nil, err
	}
	logf("Workspace: %s", dir)
	return &localWorkspace{cfg: cfg, engine: e, db: database, history: store}, nil
}

// withWorkspace opens the workspace, runs fn and closes it again.
func withWorkspace(cmd *cobra.Command, fn func(w *localWorkspace) error) error {
	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w)
}

// newExtractor creates the vision extractor configured under vision.*.
func newExtractor(cfg *config.Config) (*vision.Extractor, error) {
	provider, err := llm.NewProvider(string(cfg.Vision.Provider), cfg.Vision.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.Vision.RPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.Vision.RPM)
	}
	return vision.NewExtractor(provider, cfg.Vision.Model), nil
}

// parseIndex parses a zero-based page index argument.
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid page index %q", s)
	}
	return i, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
