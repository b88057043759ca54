package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/config"
	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flowboard",
	Short: "Flowboard - gated workflow board engine",
	Long: `Flowboard drives a Feature's Board through a gated flow state graph.

A Board is the persistent state of one Feature: its maturity, flow state,
gate evaluations, producer artifacts, and an append-only audit trail.
Each command is one orchestration step: evaluate a gate, advance the flow
state, restart a cycle, change maturity. Boards live in Redis, namespaced
by instance, with optimistic version checks instead of last-writer-wins.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to flowboard.yml (default: ./flowboard.yml if present)")
}

// loadConfig reads the configured file, falls back to ./flowboard.yml, and
// finally to built-in defaults so read-only commands work out of the box.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.Load(config.DefaultPath)
	}
	return config.Default(), nil
}

// withEngine wires config, resolver, and store into an engine and runs fn.
// The store is closed when fn returns.
func withEngine(fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resolver := gate.NewResolver()
	if cfg.GateProfiles != "" {
		resolver, err = gate.NewResolverFromFile(cfg.GateProfiles)
		if err != nil {
			return err
		}
	}

	store, err := board.NewStore(cfg.RedisOptions(), cfg.Instance)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(context.Background(), engine.New(store, resolver))
}
