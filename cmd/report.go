package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ismailkaraca/kohasayim/internal/export"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/reconcile"
	"github.com/ismailkaraca/kohasayim/internal/store"
)

func newReportCmd() *cobra.Command {
	var (
		catalogPath string
		dbPath      string
		sessionID   string
		outputDir   string
		format      string
		datasetName string
		summaryPath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile a session and export its reports",
		Long: `Recomputes the reconciliation for a stored session: the headline
summary, the per-location breakdown and the report datasets (clean,
missing, duplicates, wrong library, location mismatch, invalid
structure, not found, and the full annotated export).

Without --out the summary is printed. With --out every dataset is
written to the directory in the chosen format; --dataset limits the
export, and also prints that dataset as a table.`,
		Example: `  # Print the summary
  kohasayim report --catalog sayim.csv --session 4f7c...

  # Export every dataset as CSV
  kohasayim report --catalog sayim.csv --session 4f7c... --out raporlar/

  # Show the missing list
  kohasayim report --catalog sayim.csv --session 4f7c... --dataset missing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := loadCatalogIndex(catalogPath)
			if err != nil {
				return err
			}
			sessionStore, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sessionStore.Close()

			snapshot, err := sessionStore.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}

			led := ledger.New()
			led.Restore(snapshot.Events)

			out := cmd.OutOrStdout()

			if datasetName != "" {
				datasets := reconcile.BuildDatasets(index, led)
				rows, ok := datasets.ByName(datasetName)
				if !ok {
					return fmt.Errorf("unknown dataset %q (available: %v)", datasetName, reconcile.DatasetNames)
				}
				fmt.Fprintln(out, export.RenderDataset(rows))
				if outputDir != "" {
					return writeDataset(outputDir, datasetName, format, rows)
				}
				return nil
			}

			summary := reconcile.Summarize(index, led)
			fmt.Fprintln(out, export.RenderSummary(summary))

			if summaryPath != "" {
				if err := export.SaveSummaryYAML(summaryPath, snapshot.ID, snapshot.LibraryCode, snapshot.LocationCode, summary); err != nil {
					return err
				}
				fmt.Fprintf(out, "Summary written to %s\n", summaryPath)
			}

			if outputDir != "" {
				datasets := reconcile.BuildDatasets(index, led)
				for _, name := range reconcile.DatasetNames {
					rows, _ := datasets.ByName(name)
					if err := writeDataset(outputDir, name, format, rows); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Reports written to %s\n", outputDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", envOr("KOHASAYIM_CATALOG", ""), "Catalog snapshot file (.csv, .jsonl or .parquet)")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Session database path")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to report on")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Directory to write report files into")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv, json or parquet")
	cmd.Flags().StringVarP(&datasetName, "dataset", "d", "", "Single dataset to show/export")
	cmd.Flags().StringVar(&summaryPath, "summary-out", "", "Write the summary as YAML to this file")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func writeDataset(dir, name, format string, rows []reconcile.Row) error {
	path := filepath.Join(dir, name+"."+format)
	if err := export.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to export %s: %w", name, err)
	}
	return nil
}
