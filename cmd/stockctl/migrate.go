package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stockroom/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply every pending migration to the configured PostgreSQL database.

The migrations are embedded in the binary. Use --down to revert the most
recent one.`,
	Example: `  stockctl migrate
  stockctl migrate --down`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("down", false, "Revert the most recent migration")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.DB == nil {
		return errors.New("migrate needs STORAGE=postgres")
	}

	if down, _ := cmd.Flags().GetBool("down"); down {
		return database.Rollback(a.DB, log)
	}

	return database.Migrate(a.DB, log)
}
