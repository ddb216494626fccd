// Package cli implements the remotectl command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sghaida/remoteresource/config"
	"github.com/sghaida/remoteresource/internal/backend"
	"github.com/sghaida/remoteresource/internal/logging"
)

var (
	version = "dev"

	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "remotectl",
	Short: "Serve and query remote resource directories",
	Long: `remotectl opens the naming directory configured through REMOTE_* environment
variables (or an .env file) and serves it over HTTP, resolves names in it,
or binds new values into a SQLite-backed directory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of .env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	if envFile != "" {
		cfg = config.Load(envFile)
	} else {
		cfg = config.Load()
	}
	log, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// open is setup followed by opening the configured backend.
func open() (*config.Config, *zap.Logger, *backend.Backend, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := backend.Open(cfg.Directory, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to open directory: %w", err)
	}
	return cfg, log, b, nil
}
