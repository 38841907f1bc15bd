package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ismailkaraca/kohasayim/internal/handlers"
	"github.com/ismailkaraca/kohasayim/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port          string
		catalogPath   string
		librariesPath string
		dbPath        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the counting API server",
		Long: `Starts the counting JSON API on the specified port.

The API manages counting sessions, classifies scans against the loaded
catalog snapshot and serves reconciliation summaries and report
datasets. Sessions are persisted so a count survives a restart.`,
		Example: `  # Serve a CSV catalog snapshot on the default port
  kohasayim serve --catalog sayim.csv --libraries kutuphaneler.yaml

  # Custom port
  kohasayim serve --catalog sayim.parquet --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := loadCatalogIndex(catalogPath)
			if err != nil {
				return err
			}
			slog.Info("Catalog loaded", "records", index.Len())

			directory, err := loadDirectory(librariesPath)
			if err != nil {
				return err
			}

			sessionStore, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sessionStore.Close()

			handler, err := handlers.New(index, directory, sessionStore)
			if err != nil {
				return err
			}

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/api/libraries", handler.HandleLibraries)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Counting API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", envOr("KOHASAYIM_CATALOG", ""), "Catalog snapshot file (.csv, .jsonl or .parquet)")
	cmd.Flags().StringVar(&librariesPath, "libraries", envOr("KOHASAYIM_LIBRARIES", ""), "Library directory YAML file")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Session database path")

	return cmd
}
