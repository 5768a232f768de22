package main

import (
	"fmt"
	"os"

	"github.com/reliefnet/disaster-api/pkg/config"
	"github.com/reliefnet/disaster-api/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	dataPath    string
	databaseURL string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reliefctl",
		Short:         "Administration tool for the disaster relief API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnvFiles()
			cfg = config.Load()
			if cmd.Flags().Changed("data") {
				cfg.DataPath = dataPath
			}
			if cmd.Flags().Changed("database-url") {
				cfg.DatabaseURL = databaseURL
			}

			var err error
			logger, err = logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&dataPath, "data", "", "sqlite database file (overrides DATA_PATH)")
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres DSN (overrides DATABASE_URL)")

	root.AddCommand(newTokenCmd(), newSeedAdminCmd(), newImportCmd(), newExportCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
