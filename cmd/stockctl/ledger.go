package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and repair the income ledger",
}

var ledgerReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild order and sale income entries",
	Long: `Rebuild the income entries derived from orders and sales.

Entries whose order or sale no longer exists are removed and every live order
and sale gets a freshly derived entry. Expense entries are never touched. Run
it after ledger write failures have been logged.`,
	Args: cobra.NoArgs,
	RunE: runLedgerReconcile,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerReconcileCmd)
}

func runLedgerReconcile(cmd *cobra.Command, _ []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := a.Ledger.ReconcileAll(cmd.Context(), a.LedgerSources())
	if err != nil {
		return err
	}

	for _, r := range reports {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d removed, %d upserted\n", r.Kind, r.Removed, r.Upserted)
	}

	return nil
}
