package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ismailkaraca/kohasayim/internal/reconcile"
)

// summaryDocument is the on-disk YAML shape: the session metadata header
// followed by the summary itself.
type summaryDocument struct {
	Session     string             `yaml:"session"`
	Library     string             `yaml:"library"`
	Location    string             `yaml:"location,omitempty"`
	GeneratedAt string             `yaml:"generated_at"`
	Summary     *reconcile.Summary `yaml:"summary"`
}

// SaveSummaryYAML writes the reconciliation summary to a YAML file, with a
// header identifying the session it was computed for.
func SaveSummaryYAML(path, sessionID, libraryCode, locationCode string, summary *reconcile.Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	doc := summaryDocument{
		Session:     sessionID,
		Library:     libraryCode,
		Location:    locationCode,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary:     summary,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}
