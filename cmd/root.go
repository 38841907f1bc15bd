package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kohasayim",
		Short: "Shelf-reading tool for Koha catalog exports",
		Long: `Kohasayim reconciles physical inventory counts against a library
catalog snapshot.

Scan or type item barcodes and every scan is classified on the spot:
confirmed present, wrong location, not loanable, already withdrawn,
checked out, belonging to another branch, or unknown. At any point the
session reconciles into summary statistics and export-ready reports,
including the list of catalog records never scanned at all.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCountCmd())
	cmd.AddCommand(newBulkCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newSessionsCmd())

	return cmd
}
