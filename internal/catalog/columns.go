package catalog

import (
	"strings"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// column identifies a recognized snapshot column.
type column int

const (
	columnIdentifier column = iota
	columnStatus
	columnLoanEligibility
	columnLocation
	columnOnLoan
	columnTitle
	columnAuthor
	columnCallNumber
)

// columnAliases maps lowercased header names to columns. Koha exports use
// the English names; counting sheets produced by the national union catalog
// use the Turkish ones.
var columnAliases = map[string]column{
	"barcode":          columnIdentifier,
	"barkod":           columnIdentifier,
	"status":           columnStatus,
	"durum":            columnStatus,
	"notforloan":       columnLoanEligibility,
	"loan_eligibility": columnLoanEligibility,
	"odunc":            columnLoanEligibility,
	"location":         columnLocation,
	"yer":              columnLocation,
	"on_loan":          columnOnLoan,
	"onloan":           columnOnLoan,
	"oduncte":          columnOnLoan,
	"title":            columnTitle,
	"eser_adi":         columnTitle,
	"author":           columnAuthor,
	"yazar":            columnAuthor,
	"call_number":      columnCallNumber,
	"yer_numarasi":     columnCallNumber,
}

// statusValues maps exported status cell values to status codes. Numeric
// codes follow the export convention: 0 in collection, 1 written off,
// 2 transferred. An empty cell means the item is still in the collection.
var statusValues = map[string]models.StatusCode{
	"":              models.StatusInCollection,
	"0":             models.StatusInCollection,
	"in_collection": models.StatusInCollection,
	"1":             models.StatusWrittenOff,
	"written_off":   models.StatusWrittenOff,
	"2":             models.StatusTransferred,
	"transferred":   models.StatusTransferred,
}

// mapColumns resolves a CSV header row to recognized columns. Only the first
// occurrence of each column wins.
func mapColumns(header []string) map[column]int {
	columns := make(map[column]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		col, ok := columnAliases[key]
		if !ok {
			continue
		}
		if _, seen := columns[col]; seen {
			continue
		}
		columns[col] = i
	}
	return columns
}

// recordFromRow builds a reference record from one CSV row.
func recordFromRow(columns map[column]int, row []string) models.ReferenceRecord {
	cell := func(col column) string {
		i, ok := columns[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	status, ok := statusValues[strings.ToLower(cell(columnStatus))]
	if !ok {
		// Unknown codes never count as part of the active collection.
		status = models.StatusCode(cell(columnStatus))
	}

	return models.ReferenceRecord{
		Identifier:      cell(columnIdentifier),
		Status:          status,
		LoanEligibility: cell(columnLoanEligibility),
		Location:        cell(columnLocation),
		OnLoan:          parseFlag(cell(columnOnLoan)),
		Title:           cell(columnTitle),
		Author:          cell(columnAuthor),
		CallNumber:      cell(columnCallNumber),
	}
}

// parseFlag interprets a boolean-like export cell.
func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "evet":
		return true
	default:
		return false
	}
}
