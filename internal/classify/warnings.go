package classify

import (
	"fmt"
	"sort"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Definition describes one warning kind: its stable code, display text and
// the severity used to order multiple warnings on a single scan. The catalog
// is static; custom messages (the wrong-library text naming the matched
// branch) are produced per scan without changing the code.
type Definition struct {
	Code     models.WarningCode
	Severity int
	Text     string
}

var definitions = map[models.WarningCode]Definition{
	models.WarningDuplicate:            {models.WarningDuplicate, 10, "already scanned in this session"},
	models.WarningWrongLibrary:         {models.WarningWrongLibrary, 20, "item belongs to another library"},
	models.WarningInvalidStructure:     {models.WarningInvalidStructure, 21, "barcode does not match any known library prefix"},
	models.WarningLocationMismatch:     {models.WarningLocationMismatch, 30, "item is shelved under a different location"},
	models.WarningNotLoanable:          {models.WarningNotLoanable, 31, "item is not loanable"},
	models.WarningNotInCollection:      {models.WarningNotInCollection, 32, "item is no longer part of the collection"},
	models.WarningOnLoan:               {models.WarningOnLoan, 33, "item is currently checked out"},
	models.WarningAutoCompleteNotFound: {models.WarningAutoCompleteNotFound, 40, "auto-completed barcode not found in catalog"},
	models.WarningDeleted:              {models.WarningDeleted, 41, "barcode not found in catalog"},
	models.WarningISBNDetected:         {models.WarningISBNDetected, 50, "scanned code is an ISBN, not an item barcode"},
}

// newWarning builds a warning with the catalog's display text.
func newWarning(code models.WarningCode) models.Warning {
	return models.Warning{Code: code, Message: definitions[code].Text}
}

// newWarningf builds a warning with a custom message.
func newWarningf(code models.WarningCode, format string, args ...any) models.Warning {
	return models.Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

// sortWarnings orders warnings by catalog severity. The sort is stable so
// warnings of one severity keep their emission order.
func sortWarnings(warnings []models.Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		return definitions[warnings[i].Code].Severity < definitions[warnings[j].Code].Severity
	})
}
