package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/classify"
)

// envOr returns the environment variable's value or a fallback.
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// defaultDBPath is where session snapshots are stored unless overridden by
// --db or KOHASAYIM_DB.
func defaultDBPath() string {
	if fromEnv := os.Getenv("KOHASAYIM_DB"); fromEnv != "" {
		return fromEnv
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "kohasayim.db"
	}
	return filepath.Join(configDir, "kohasayim", "sessions.db")
}

// loadCatalogIndex loads the snapshot file and builds the lookup index.
func loadCatalogIndex(path string) (*catalog.Index, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog snapshot required (use --catalog or KOHASAYIM_CATALOG)")
	}
	index, err := catalog.NewLoader(path).LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return index, nil
}

// loadDirectory loads the library directory. Without a file the directory
// starts empty and foreign prefixes degrade to invalid-structure warnings.
func loadDirectory(path string) (*classify.Directory, error) {
	if path == "" {
		return classify.NewDirectory(), nil
	}
	directory, err := classify.LoadDirectory(path)
	if err != nil {
		return nil, err
	}
	return directory, nil
}

