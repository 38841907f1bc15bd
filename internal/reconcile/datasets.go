package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Row is one flat record of a report dataset, shaped for tabular export.
// Unused fields stay empty; ScanCount is only meaningful for duplicates.
type Row struct {
	Identifier string `json:"barcode" parquet:"barcode"`
	Title      string `json:"title,omitempty" parquet:"title,optional"`
	Author     string `json:"author,omitempty" parquet:"author,optional"`
	Location   string `json:"location,omitempty" parquet:"location,optional"`
	CallNumber string `json:"call_number,omitempty" parquet:"call_number,optional"`
	Status     string `json:"status,omitempty" parquet:"status,optional"`
	RawInput   string `json:"raw_input,omitempty" parquet:"raw_input,optional"`
	Warnings   string `json:"warnings,omitempty" parquet:"warnings,optional"`
	ScannedAt  string `json:"scanned_at,omitempty" parquet:"scanned_at,optional"`
	ScanCount  int    `json:"scan_count,omitempty" parquet:"scan_count,optional"`
}

// Datasets are the export-ready report record sets, each a simple predicate
// filter over the ledger and catalog.
type Datasets struct {
	Clean            []Row `json:"clean"`
	Missing          []Row `json:"missing"`
	Duplicates       []Row `json:"duplicates"`
	WrongLibrary     []Row `json:"wrong_library"`
	LocationMismatch []Row `json:"location_mismatch"`
	InvalidStructure []Row `json:"invalid_structure"`
	NotFound         []Row `json:"not_found"`
	Full             []Row `json:"full"`
}

// ByName returns a dataset by its export name.
func (d *Datasets) ByName(name string) ([]Row, bool) {
	switch name {
	case "clean":
		return d.Clean, true
	case "missing":
		return d.Missing, true
	case "duplicates":
		return d.Duplicates, true
	case "wrong_library":
		return d.WrongLibrary, true
	case "location_mismatch":
		return d.LocationMismatch, true
	case "invalid_structure":
		return d.InvalidStructure, true
	case "not_found":
		return d.NotFound, true
	case "full":
		return d.Full, true
	default:
		return nil, false
	}
}

// DatasetNames lists the report datasets in presentation order.
var DatasetNames = []string{
	"clean", "missing", "duplicates", "wrong_library",
	"location_mismatch", "invalid_structure", "not_found", "full",
}

// rowFromEvent flattens a scan event and its resolved reference.
func rowFromEvent(event *models.ScanEvent) Row {
	row := Row{
		Identifier: event.Identifier,
		RawInput:   event.RawInput,
		ScannedAt:  event.Timestamp.Format(time.RFC3339),
	}

	messages := make([]string, 0, len(event.Warnings))
	for _, w := range event.Warnings {
		messages = append(messages, w.Message)
	}
	row.Warnings = strings.Join(messages, "; ")

	if ref := event.Reference; ref != nil {
		row.Title = ref.Title
		row.Author = ref.Author
		row.Location = ref.Location
		row.CallNumber = ref.CallNumber
		row.Status = string(ref.Status)
	}
	return row
}

// rowFromRecord flattens a catalog record that was never scanned.
func rowFromRecord(record *models.ReferenceRecord) Row {
	return Row{
		Identifier: record.Identifier,
		Title:      record.Title,
		Author:     record.Author,
		Location:   record.Location,
		CallNumber: record.CallNumber,
		Status:     string(record.Status),
	}
}

// BuildDatasets derives every report dataset from the current state.
func BuildDatasets(index *catalog.Index, led *ledger.Ledger) *Datasets {
	d := &Datasets{}

	deduped := dedupedEvents(led)
	scanned := make(map[string]bool, len(deduped))
	for _, event := range deduped {
		scanned[event.Identifier] = true
		if event.Valid {
			d.Clean = append(d.Clean, rowFromEvent(event))
		}
	}

	// Missing: active-collection identifiers with no non-duplicate scan,
	// ordered by location then identifier for shelf-by-shelf checking.
	for _, record := range index.Records() {
		if !record.InCollection() || scanned[record.Identifier] {
			continue
		}
		d.Missing = append(d.Missing, rowFromRecord(record))
	}
	sort.SliceStable(d.Missing, func(i, j int) bool {
		if c := turkishCollator.CompareString(d.Missing[i].Location, d.Missing[j].Location); c != 0 {
			return c < 0
		}
		return d.Missing[i].Identifier < d.Missing[j].Identifier
	})

	// Duplicates: grouped by identifier with total scan counts, from the
	// full non-deduplicated ledger.
	duplicateCounts := make(map[string]int)
	var duplicateOrder []string
	for _, event := range led.EventsOldestFirst() {
		if !event.IsDuplicate() {
			continue
		}
		if _, ok := duplicateCounts[event.Identifier]; !ok {
			duplicateOrder = append(duplicateOrder, event.Identifier)
		}
		duplicateCounts[event.Identifier]++
	}
	for _, identifier := range duplicateOrder {
		row := Row{Identifier: identifier, ScanCount: duplicateCounts[identifier] + 1}
		if first, ok := led.FirstEvent(identifier); ok {
			row = rowFromEvent(first)
			row.Warnings = ""
			row.ScanCount = duplicateCounts[identifier] + 1
		}
		d.Duplicates = append(d.Duplicates, row)
	}

	for _, event := range led.EventsOldestFirst() {
		row := rowFromEvent(event)
		d.Full = append(d.Full, row)

		if event.IsDuplicate() {
			continue
		}
		switch {
		case event.HasWarning(models.WarningWrongLibrary):
			d.WrongLibrary = append(d.WrongLibrary, row)
		case event.HasWarning(models.WarningInvalidStructure):
			d.InvalidStructure = append(d.InvalidStructure, row)
		}
		if event.HasWarning(models.WarningLocationMismatch) {
			d.LocationMismatch = append(d.LocationMismatch, row)
		}
		if event.HasWarning(models.WarningDeleted) || event.HasWarning(models.WarningAutoCompleteNotFound) {
			d.NotFound = append(d.NotFound, row)
		}
	}

	return d
}
