package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ismailkaraca/kohasayim/internal/bulk"
	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/store"
)

func newBulkCmd() *cobra.Command {
	var (
		catalogPath   string
		librariesPath string
		dbPath        string
		sessionID     string
		filePath      string
		chunkSize     int
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Reconcile a barcode list file into a session",
		Long: `Feeds a file of barcodes (one per line) through the classifier in
chunks. Per-scan notifications stay quiet; ISBN lines are counted and
reported at the end. The session must already exist.`,
		Example: `  kohasayim bulk --catalog sayim.csv --session 4f7c... --file okutulan.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := loadCatalogIndex(catalogPath)
			if err != nil {
				return err
			}
			directory, err := loadDirectory(librariesPath)
			if err != nil {
				return err
			}
			sessionStore, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sessionStore.Close()

			ctx := cmd.Context()

			snapshot, err := sessionStore.Load(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}

			file, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open barcode list: %w", err)
			}
			defer file.Close()

			codes, err := bulk.ReadCodes(file)
			if err != nil {
				return err
			}
			slog.Info("Bulk run starting", "codes", len(codes), "session", snapshot.ID)

			led := ledger.New()
			led.Restore(snapshot.Events)
			classifier := classify.New(snapshot.Scope(), index, led, directory)

			runner := bulk.New(classifier, chunkSize)
			progress, err := runner.Run(ctx, codes, func(p bulk.Progress) {
				slog.Info("Bulk progress", "processed", p.Processed, "total", p.Total)
			})
			if err != nil {
				return err
			}

			snapshot.Events = led.Snapshot()
			snapshot.UpdatedAt = time.Now().UTC()
			if err := sessionStore.Save(ctx, snapshot); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Processed %d codes: %d logged, %d ISBN, %d ignored\n",
				progress.Processed, progress.Logged, progress.ISBNs, progress.Ignored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", envOr("KOHASAYIM_CATALOG", ""), "Catalog snapshot file (.csv, .jsonl or .parquet)")
	cmd.Flags().StringVar(&librariesPath, "libraries", envOr("KOHASAYIM_LIBRARIES", ""), "Library directory YAML file")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Session database path")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to append to")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Barcode list file, one code per line")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", bulk.DefaultChunkSize, "Codes classified between progress reports")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
