package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Plan delivery batches",
}

var batchImportCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Create batches from a CSV plan",
	Long: `Create one batch per row of a CSV plan.

The file may be comma or semicolon separated and in UTF-8, UTF-16 or a
Windows code page. Recognised headers:

  base_code;product_id;cost_price;selling_price;quantity

Either every row becomes a batch or none does.`,
	Example: `  stockctl batch import deliveries.csv`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBatchImport,
}

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List batches with their admission progress",
	Args:  cobra.NoArgs,
	RunE:  runBatchList,
}

var batchLabelsCmd = &cobra.Command{
	Use:   "labels [batch-id]",
	Short: "Print the barcodes to label a batch with, one per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchLabels,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchImportCmd, batchListCmd, batchLabelsCmd)
}

func runBatchImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening plan: %w", err)
	}
	defer f.Close()

	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batches, err := a.Batches.ImportPlan(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, b := range batches {
		fmt.Fprintf(out, "%s\t%s\t%s\t%d\n", b.ID, b.BaseCode, b.ProductID, b.Quantity)
	}

	fmt.Fprintf(out, "imported %d batches\n", len(batches))

	return nil
}

func runBatchList(cmd *cobra.Command, _ []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batches, err := a.Batches.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBASE CODE\tPRODUCT\tADMITTED\tSTATE")

	for _, b := range batches {
		p, err := a.Tracker.Progress(cmd.Context(), b.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n", b.ID, b.BaseCode, b.ProductID, p.Admitted, p.Quantity, p.State)
	}

	return w.Flush()
}

func runBatchLabels(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	codes, err := a.Tracker.ExpectedBarcodes(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(codes, "\n"))

	return err
}
