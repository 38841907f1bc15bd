package export

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ismailkaraca/kohasayim/internal/reconcile"
)

func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	right := make(map[int]bool, len(rightAligned))
	for _, col := range rightAligned {
		right[col] = true
	}
	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// RenderSummary renders the session summary as console tables.
func RenderSummary(summary *reconcile.Summary) string {
	if summary.NoData {
		return "No catalog and no scans loaded yet."
	}

	throughput := "-"
	if summary.Throughput.Defined {
		throughput = fmt.Sprintf("%d/min", summary.Throughput.PerMinute)
	}

	headline := renderTable(
		[]string{"Metric", "Count", "% of active"},
		[][]string{
			{"Catalog records", fmt.Sprintf("%d", summary.CatalogTotal), ""},
			{"Active collection", fmt.Sprintf("%d", summary.ActiveTotal), ""},
			{"Total scans", fmt.Sprintf("%d", summary.TotalScans), ""},
			{"Unique items scanned", fmt.Sprintf("%d", summary.UniqueScanned), ""},
			{"Confirmed present", fmt.Sprintf("%d", summary.ValidCount), fmt.Sprintf("%.1f", summary.ValidPercent)},
			{"Scanned with warnings", fmt.Sprintf("%d", summary.InvalidCount), fmt.Sprintf("%.1f", summary.InvalidPercent)},
			{"Missing", fmt.Sprintf("%d", summary.MissingCount), fmt.Sprintf("%.1f", summary.MissingPercent)},
			{"Duplicate scans", fmt.Sprintf("%d", summary.DuplicateScans), ""},
			{"Scan rate", throughput, ""},
		},
		1, 2,
	)

	if len(summary.Locations) == 0 {
		return headline
	}

	locationRows := make([][]string, 0, len(summary.Locations))
	for _, stats := range summary.Locations {
		location := stats.Location
		if location == "" {
			location = "(none)"
		}
		locationRows = append(locationRows, []string{
			location,
			fmt.Sprintf("%d", stats.Valid),
			fmt.Sprintf("%d", stats.Warned),
			fmt.Sprintf("%d", stats.Missing),
		})
	}

	locations := renderTable(
		[]string{"Location", "Present", "Warned", "Missing"},
		locationRows,
		1, 2, 3,
	)

	return headline + "\n" + locations
}

// RenderDataset renders a report dataset as a console table.
func RenderDataset(rows []reconcile.Row) string {
	if len(rows) == 0 {
		return "(empty)"
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, rowCells(row))
	}
	return renderTable(rowHeader, cells, 9)
}
