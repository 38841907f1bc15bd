// Package export writes report datasets to tabular formats and renders them
// as console tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ismailkaraca/kohasayim/internal/reconcile"
)

// rowHeader is the column order shared by the CSV export and the console
// table.
var rowHeader = []string{
	"barcode", "title", "author", "location", "call_number",
	"status", "raw_input", "warnings", "scanned_at", "scan_count",
}

func rowCells(row reconcile.Row) []string {
	scanCount := ""
	if row.ScanCount > 0 {
		scanCount = strconv.Itoa(row.ScanCount)
	}
	return []string{
		row.Identifier, row.Title, row.Author, row.Location, row.CallNumber,
		row.Status, row.RawInput, row.Warnings, row.ScannedAt, scanCount,
	}
}

// WriteCSV writes a dataset as CSV with a header row.
func WriteCSV(w io.Writer, rows []reconcile.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rowHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(rowCells(row)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteJSON writes a dataset as an indented JSON array.
func WriteJSON(w io.Writer, rows []reconcile.Row) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode rows to JSON: %w", err)
	}
	return nil
}

// WriteParquet writes a dataset as a Parquet file.
func WriteParquet(w io.Writer, rows []reconcile.Row) error {
	writer := parquet.NewGenericWriter[reconcile.Row](w)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteFile writes a dataset to path, choosing the format by extension.
// Parent directories are created as needed.
func WriteFile(path string, rows []reconcile.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return WriteCSV(file, rows)
	case ".json":
		return WriteJSON(file, rows)
	case ".parquet":
		return WriteParquet(file, rows)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: .csv, .json, .parquet)", ext)
	}
}
