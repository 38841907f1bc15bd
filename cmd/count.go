package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/export"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
	"github.com/ismailkaraca/kohasayim/internal/reconcile"
	"github.com/ismailkaraca/kohasayim/internal/store"
)

func newCountCmd() *cobra.Command {
	var (
		catalogPath   string
		librariesPath string
		dbPath        string
		sessionID     string
		sessionName   string
		libraryCode   string
		locationCode  string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Run an interactive counting session on stdin",
		Long: `Reads barcodes line by line (scanner wedge or keyboard), classifies
each one immediately and prints the verdict. The session is saved to the
session database on exit and can be resumed later with --session.`,
		Example: `  # Start a new count for library 12, adult fiction shelves
  kohasayim count --catalog sayim.csv --library 12 --location YB --name "salon"

  # Resume an earlier session
  kohasayim count --catalog sayim.csv --session 4f7c...`,
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

			var snapshot *models.SessionSnapshot
			if sessionID != "" {
				snapshot, err = sessionStore.Load(ctx, sessionID)
				if err != nil {
					return fmt.Errorf("failed to resume session %s: %w", sessionID, err)
				}
				slog.Info("Resumed session", "id", snapshot.ID, "name", snapshot.Name, "events", len(snapshot.Events))
			} else {
				if libraryCode == "" {
					return fmt.Errorf("--library is required for a new session")
				}
				now := time.Now().UTC()
				snapshot = &models.SessionSnapshot{
					ID:           uuid.NewString(),
					Name:         sessionName,
					LibraryCode:  libraryCode,
					LocationCode: locationCode,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				slog.Info("Started session", "id", snapshot.ID, "library", libraryCode)
			}

			led := ledger.New()
			led.Restore(snapshot.Events)
			classifier := classify.New(snapshot.Scope(), index, led, directory)

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if ctx.Err() != nil {
					break
				}
				printOutcome(out, classifier.Classify(scanner.Text()))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read scans: %w", err)
			}

			snapshot.Events = led.Snapshot()
			snapshot.UpdatedAt = time.Now().UTC()
			// The loop context is canceled on Ctrl+C; the exit save must
			// still go through or the whole count is lost.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sessionStore.Save(saveCtx, snapshot); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			slog.Info("Session saved", "id", snapshot.ID, "events", len(snapshot.Events))

			fmt.Fprintln(out, export.RenderSummary(reconcile.Summarize(index, led)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", envOr("KOHASAYIM_CATALOG", ""), "Catalog snapshot file (.csv, .jsonl or .parquet)")
	cmd.Flags().StringVar(&librariesPath, "libraries", envOr("KOHASAYIM_LIBRARIES", ""), "Library directory YAML file")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Session database path")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to resume")
	cmd.Flags().StringVarP(&sessionName, "name", "n", "", "Name for a new session")
	cmd.Flags().StringVarP(&libraryCode, "library", "l", "", "Library code for a new session")
	cmd.Flags().StringVar(&locationCode, "location", "", "Optional location filter for a new session")

	return cmd
}

// printOutcome writes one line per scan, the counting desk feedback.
func printOutcome(out io.Writer, outcome classify.Outcome) {
	switch outcome.Kind {
	case classify.OutcomeIgnored:
		// Blank input, nothing to report.
	case classify.OutcomeISBN:
		fmt.Fprintf(out, "ISBN  %s\n", outcome.Warning.Message)
	case classify.OutcomeLogged:
		event := outcome.Event
		if event.Valid {
			title := ""
			if event.Reference != nil {
				title = event.Reference.Title
			}
			fmt.Fprintf(out, "OK    %s  %s\n", event.Identifier, title)
			return
		}
		messages := make([]string, 0, len(event.Warnings))
		for _, w := range event.Warnings {
			messages = append(messages, w.Message)
		}
		fmt.Fprintf(out, "WARN  %s  %s\n", event.Identifier, strings.Join(messages, "; "))
	}
}
