package catalog

import (
	"errors"
	"strings"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// ErrMissingColumn is returned when a catalog source carries no item
// identifier column. A failed load must leave any previously built index
// untouched, so Load/NewIndex return before anything is replaced.
var ErrMissingColumn = errors.New("catalog source has no identifier column")

// Index is the read-only lookup structure over one catalog snapshot,
// keyed by the canonical 12-digit identifier. It is built once per load and
// never mutated; callers replace the whole index on a new load.
type Index struct {
	records map[string]*models.ReferenceRecord
	order   []string
}

// NewIndex builds an index from loaded snapshot rows. Rows without an
// identifier are the mark of a snapshot exported without the barcode column,
// so a snapshot where no row carries one is rejected with ErrMissingColumn.
func NewIndex(rows []models.ReferenceRecord) (*Index, error) {
	idx := &Index{
		records: make(map[string]*models.ReferenceRecord, len(rows)),
		order:   make([]string, 0, len(rows)),
	}

	sawIdentifier := false
	for i := range rows {
		id := strings.TrimSpace(rows[i].Identifier)
		if id == "" {
			continue
		}
		sawIdentifier = true
		if _, exists := idx.records[id]; exists {
			continue
		}
		rec := rows[i]
		rec.Identifier = id
		idx.records[id] = &rec
		idx.order = append(idx.order, id)
	}

	if len(rows) > 0 && !sawIdentifier {
		return nil, ErrMissingColumn
	}

	return idx, nil
}

// Lookup returns the reference record for a canonical identifier.
func (i *Index) Lookup(identifier string) (*models.ReferenceRecord, bool) {
	rec, ok := i.records[identifier]
	return rec, ok
}

// Len returns the number of indexed records.
func (i *Index) Len() int {
	return len(i.records)
}

// Records returns the indexed records in load order.
func (i *Index) Records() []*models.ReferenceRecord {
	out := make([]*models.ReferenceRecord, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.records[id])
	}
	return out
}
