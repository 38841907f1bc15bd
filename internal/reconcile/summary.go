// Package reconcile derives summary statistics and export-ready report
// datasets from the catalog index and the session ledger. Everything here is
// a pure function of current state and can be recomputed at any time.
package reconcile

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Throughput is the session's scan rate. With fewer than two events the rate
// is undefined, never zero: a single scan says nothing about pace.
type Throughput struct {
	PerMinute int  `json:"per_minute" yaml:"per_minute"`
	Defined   bool `json:"defined" yaml:"defined"`
}

// LocationStats is the per-shelf-location breakdown. Locations with zero
// scans still get an entry so their missing counts are visible.
type LocationStats struct {
	Location string `json:"location" yaml:"location"`
	Valid    int    `json:"valid" yaml:"valid"`
	Warned   int    `json:"warned" yaml:"warned"`
	Missing  int    `json:"missing" yaml:"missing"`
}

// Summary represents the reconciled headline picture of a counting session.
// All percentages are computed over the active collection only: items
// already written off or transferred are excluded from the denominator,
// even if scanned.
type Summary struct {
	NoData bool `json:"no_data" yaml:"no_data"`

	CatalogTotal int `json:"catalog_total" yaml:"catalog_total"`
	ActiveTotal  int `json:"active_total" yaml:"active_total"`

	TotalScans     int `json:"total_scans" yaml:"total_scans"`
	UniqueScanned  int `json:"unique_scanned" yaml:"unique_scanned"`
	ValidCount     int `json:"valid_count" yaml:"valid_count"`
	InvalidCount   int `json:"invalid_count" yaml:"invalid_count"`
	MissingCount   int `json:"missing_count" yaml:"missing_count"`
	DuplicateScans int `json:"duplicate_scans" yaml:"duplicate_scans"`

	ValidPercent   float64 `json:"valid_percent" yaml:"valid_percent"`
	InvalidPercent float64 `json:"invalid_percent" yaml:"invalid_percent"`
	MissingPercent float64 `json:"missing_percent" yaml:"missing_percent"`

	Throughput Throughput      `json:"throughput" yaml:"throughput"`
	Locations  []LocationStats `json:"locations" yaml:"locations"`
}

// turkishCollator orders location and library strings the way the counting
// sheets are printed.
var turkishCollator = collate.New(language.Turkish)

// dedupedEvents returns one event per identifier, in scan order, skipping
// duplicate-warned rows. A repeat scan of an already-valid item must not
// inflate either the valid or the invalid count.
func dedupedEvents(led *ledger.Ledger) []*models.ScanEvent {
	seen := make(map[string]bool)
	var out []*models.ScanEvent
	for _, event := range led.EventsOldestFirst() {
		if event.IsDuplicate() || seen[event.Identifier] {
			continue
		}
		seen[event.Identifier] = true
		out = append(out, event)
	}
	return out
}

// Summarize computes the session summary from the current index and ledger.
func Summarize(index *catalog.Index, led *ledger.Ledger) *Summary {
	summary := &Summary{
		CatalogTotal: index.Len(),
		TotalScans:   led.Len(),
	}

	if index.Len() == 0 && led.Len() == 0 {
		summary.NoData = true
		return summary
	}

	deduped := dedupedEvents(led)
	summary.UniqueScanned = len(deduped)

	scanned := make(map[string]*models.ScanEvent, len(deduped))
	for _, event := range deduped {
		scanned[event.Identifier] = event
		if event.Valid {
			summary.ValidCount++
		} else {
			summary.InvalidCount++
		}
	}

	for _, event := range led.EventsOldestFirst() {
		if event.IsDuplicate() {
			summary.DuplicateScans++
		}
	}

	locations := make(map[string]*LocationStats)
	locationFor := func(code string) *LocationStats {
		stats, ok := locations[code]
		if !ok {
			stats = &LocationStats{Location: code}
			locations[code] = stats
		}
		return stats
	}

	for _, record := range index.Records() {
		if !record.InCollection() {
			continue
		}
		summary.ActiveTotal++
		stats := locationFor(record.Location)
		if event, ok := scanned[record.Identifier]; ok {
			if event.Valid {
				stats.Valid++
			} else {
				stats.Warned++
			}
		} else {
			summary.MissingCount++
			stats.Missing++
		}
	}

	if summary.ActiveTotal > 0 {
		summary.ValidPercent = 100 * float64(summary.ValidCount) / float64(summary.ActiveTotal)
		summary.InvalidPercent = 100 * float64(summary.InvalidCount) / float64(summary.ActiveTotal)
		summary.MissingPercent = 100 * float64(summary.MissingCount) / float64(summary.ActiveTotal)
	}

	summary.Throughput = throughput(led)

	summary.Locations = make([]LocationStats, 0, len(locations))
	for _, stats := range locations {
		summary.Locations = append(summary.Locations, *stats)
	}
	sort.Slice(summary.Locations, func(i, j int) bool {
		return turkishCollator.CompareString(summary.Locations[i].Location, summary.Locations[j].Location) < 0
	})

	return summary
}

// throughput computes round(totalScans / elapsedMinutes) between the oldest
// and newest scan events.
func throughput(led *ledger.Ledger) Throughput {
	events := led.EventsOldestFirst()
	if len(events) < 2 {
		return Throughput{}
	}

	elapsed := events[len(events)-1].Timestamp.Sub(events[0].Timestamp).Minutes()
	if elapsed <= 0 {
		return Throughput{}
	}

	return Throughput{
		PerMinute: int(math.Round(float64(len(events)) / elapsed)),
		Defined:   true,
	}
}
