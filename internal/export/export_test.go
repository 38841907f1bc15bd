package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ismailkaraca/kohasayim/internal/reconcile"
)

func sampleRows() []reconcile.Row {
	return []reconcile.Row{
		{
			Identifier: "101200012345",
			Title:      "Ince Memed",
			Location:   "YB",
			Status:     "in_collection",
			ScannedAt:  "2026-03-14T10:00:00Z",
		},
		{
			Identifier: "101200012346",
			Warnings:   "barcode not found in catalog",
			RawInput:   "12346",
			ScanCount:  2,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteCSV() returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to re-read CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "barcode" {
		t.Errorf("Expected barcode header, got %s", records[0][0])
	}
	if records[1][0] != "101200012345" || records[1][1] != "Ince Memed" {
		t.Errorf("Expected first data row fields, got %v", records[1])
	}
	if records[2][9] != "2" {
		t.Errorf("Expected scan_count=2 on second row, got %q", records[2][9])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteJSON() returned error: %v", err)
	}

	var rows []reconcile.Row
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("failed to re-read JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Identifier != "101200012345" {
		t.Errorf("Expected identifier to round-trip, got %s", rows[0].Identifier)
	}
}

func TestWriteFileUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteFile(path, sampleRows()); err == nil {
		t.Error("Expected error for unsupported export format")
	}
}

func TestRenderDataset(t *testing.T) {
	rendered := RenderDataset(sampleRows())
	if !strings.Contains(rendered, "101200012345") {
		t.Error("Expected rendered table to contain the identifier")
	}
	if !strings.Contains(rendered, "Ince Memed") {
		t.Error("Expected rendered table to contain the title")
	}

	if got := RenderDataset(nil); got != "(empty)" {
		t.Errorf("Expected empty marker for empty dataset, got %q", got)
	}
}

func TestSaveSummaryYAML(t *testing.T) {
	summary := &reconcile.Summary{
		CatalogTotal:  2,
		ActiveTotal:   2,
		TotalScans:    3,
		UniqueScanned: 2,
		ValidCount:    1,
		InvalidCount:  1,
	}

	path := filepath.Join(t.TempDir(), "reports", "summary.yaml")
	if err := SaveSummaryYAML(path, "4f7c", "12", "YB", summary); err != nil {
		t.Fatalf("SaveSummaryYAML() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary file: %v", err)
	}

	var doc struct {
		Session string             `yaml:"session"`
		Library string             `yaml:"library"`
		Summary *reconcile.Summary `yaml:"summary"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to parse summary YAML: %v", err)
	}
	if doc.Session != "4f7c" || doc.Library != "12" {
		t.Errorf("Expected session header to round-trip, got %s/%s", doc.Session, doc.Library)
	}
	if doc.Summary == nil || doc.Summary.ValidCount != 1 {
		t.Errorf("Expected summary valid_count=1, got %+v", doc.Summary)
	}
}
