package cli

import (
	"context"

	"github.com/gear6io/metacat/server/catalog"
	"github.com/gear6io/metacat/server/catalog/hive"
	"github.com/gear6io/metacat/server/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Context key types to avoid collisions
type contextKey string

// LoggerKey carries the zerolog.Logger commands log to
const LoggerKey contextKey = "logger"

var rootCmd = &cobra.Command{
	Use:   "metacat",
	Short: "Inspect and manage a Hive-style metastore catalog",
	Long: `metacat presents databases, tables, partitions, functions and statistics
of a Hive-style metastore through an engine-neutral catalog.

The metastore is selected by the configuration file; without one an
in-memory metastore is used.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the metacat configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithContext runs the root command with a context carrying the logger
func ExecuteWithContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// loggerFromContext returns the logger stored under LoggerKey, or a no-op one
func loggerFromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// loadConfig reads --config when given and falls back to the defaults
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.LoadDefaultConfig(), nil
	}
	return config.LoadConfig(configPath)
}

// openCatalog opens the configured catalog. The caller closes it.
func openCatalog(cmd *cobra.Command) (*hive.Catalog, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx).With().Str("cmd", cmd.CommandPath()).Logger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Error().Err(err).Str("config", configPath).Msg("Failed to load configuration")
		return nil, err
	}
	if verbose(cmd) {
		newDisplay(cmd).Info("Metastore: %s (%s)", cfg.Metastore.Type, cfg.Metastore.Path)
	}

	cat, err := catalog.NewCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open catalog")
		return nil, err
	}
	return cat, nil
}

func verbose(cmd *cobra.Command) bool {
	flag := cmd.Flag("verbose")
	return flag != nil && flag.Value.String() == "true"
}
