package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/app"
	"github.com/MrJamesThe3rd/stockroom/internal/config"
	"github.com/MrJamesThe3rd/stockroom/internal/logger"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Administer the stockroom inventory",
	Long: `Administrative commands for the stockroom: schema migrations, batch plan
imports and ledger repair.

Configuration is read from the environment and from a .env file in the
working directory, the same way the API server reads it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Log.Level
		}

		log, err = logger.New(level, logger.EncodingConsole)

		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
}

// open builds the services against the configured store.
func open(cmd *cobra.Command) (*app.App, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("STORAGE is memory: changes are discarded when the command exits")
	}

	return app.New(cmd.Context(), cfg, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
