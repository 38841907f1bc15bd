package catalog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Loader handles loading of a catalog snapshot file.
type Loader struct {
	snapshotPath string
}

// NewLoader creates a new snapshot loader.
func NewLoader(snapshotPath string) *Loader {
	return &Loader{
		snapshotPath: snapshotPath,
	}
}

// Load loads reference records from a snapshot file (CSV, JSONL or Parquet).
func (l *Loader) Load() ([]models.ReferenceRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.snapshotPath))

	switch ext {
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	case ".csv":
		return l.loadCSV()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .parquet)", ext)
	}
}

// LoadIndex loads the snapshot and builds the lookup index in one step.
// On any failure the previous index held by the caller stays valid.
func (l *Loader) LoadIndex() (*Index, error) {
	rows, err := l.Load()
	if err != nil {
		return nil, err
	}
	return NewIndex(rows)
}

// loadJSONL loads records from a JSONL file.
func (l *Loader) loadJSONL() ([]models.ReferenceRecord, error) {
	slog.Debug("Opening JSONL snapshot", "path", l.snapshotPath)

	file, err := os.Open(l.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	var records []models.ReferenceRecord
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long lines
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record models.ReferenceRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		records = append(records, record)

		if lineNum%10000 == 0 {
			slog.Debug("Reading JSONL snapshot", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	slog.Debug("Finished reading JSONL snapshot", "total_records", len(records))

	return records, nil
}

// loadParquet loads records from a Parquet file.
func (l *Loader) loadParquet() ([]models.ReferenceRecord, error) {
	slog.Debug("Opening Parquet snapshot", "path", l.snapshotPath)

	file, err := os.Open(l.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet snapshot opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.ReferenceRecord](pf)
	defer reader.Close()

	var records []models.ReferenceRecord
	rows := make([]models.ReferenceRecord, 128) // Read in batches

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet snapshot", "total_records", len(records))

	return records, nil
}

// loadCSV loads records from a CSV export. Column headers are matched
// case-insensitively against Turkish and English aliases.
func (l *Loader) loadCSV() ([]models.ReferenceRecord, error) {
	slog.Debug("Opening CSV snapshot", "path", l.snapshotPath)

	file, err := os.Open(l.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := mapColumns(header)
	if _, ok := columns[columnIdentifier]; !ok {
		return nil, ErrMissingColumn
	}

	var records []models.ReferenceRecord
	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV at line %d: %w", lineNum+1, err)
		}
		lineNum++
		records = append(records, recordFromRow(columns, row))
	}

	slog.Debug("Finished reading CSV snapshot", "total_records", len(records))

	return records, nil
}
