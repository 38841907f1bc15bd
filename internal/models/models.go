package models

import "time"

// StatusCode is the catalog's item status as exported, an opaque code with
// three values the engine cares about.
type StatusCode string

const (
	StatusInCollection StatusCode = "in_collection"
	StatusWrittenOff   StatusCode = "written_off"
	StatusTransferred  StatusCode = "transferred"
)

// LoanableEligibilityCodes are the loan eligibility codes under which an item
// counts as loanable.
var LoanableEligibilityCodes = map[string]bool{
	"0": true,
	"2": true,
}

// ReferenceRecord represents one row of the uploaded catalog snapshot.
// Records are immutable once loaded and replaced wholesale on a new load.
type ReferenceRecord struct {
	Identifier      string     `json:"barcode" parquet:"barcode"`
	Status          StatusCode `json:"status" parquet:"status"`
	LoanEligibility string     `json:"loan_eligibility" parquet:"loan_eligibility"`
	Location        string     `json:"location,omitempty" parquet:"location,optional"`
	OnLoan          bool       `json:"on_loan" parquet:"on_loan"`

	// Descriptive fields passed through unchanged.
	Title      string `json:"title,omitempty" parquet:"title,optional"`
	Author     string `json:"author,omitempty" parquet:"author,optional"`
	CallNumber string `json:"call_number,omitempty" parquet:"call_number,optional"`
}

// InCollection reports whether the record is part of the active collection.
func (r *ReferenceRecord) InCollection() bool {
	return r.Status == StatusInCollection
}

// Loanable reports whether the record's eligibility code allows lending.
func (r *ReferenceRecord) Loanable() bool {
	return LoanableEligibilityCodes[r.LoanEligibility]
}

// Library is one entry of the library directory: the numeric branch code and
// its display name.
type Library struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Scope fixes the library (and optionally the shelf location) a counting
// session is restricted to. Immutable for the life of a session.
type Scope struct {
	LibraryCode  string `json:"library_code"`
	LocationCode string `json:"location_code,omitempty"`
}

// WarningCode identifies a classification warning kind.
type WarningCode string

const (
	WarningDuplicate            WarningCode = "duplicate"
	WarningWrongLibrary         WarningCode = "wrong_library"
	WarningInvalidStructure     WarningCode = "invalid_structure"
	WarningLocationMismatch     WarningCode = "location_mismatch"
	WarningNotLoanable          WarningCode = "not_loanable"
	WarningNotInCollection      WarningCode = "not_in_collection"
	WarningOnLoan               WarningCode = "on_loan"
	WarningAutoCompleteNotFound WarningCode = "auto_completed_not_found"
	WarningDeleted              WarningCode = "deleted"
	WarningISBNDetected         WarningCode = "isbn_detected"
)

// Warning is a classification warning attached to a scan. A single scan may
// carry several, ordered by severity.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// ScanEvent represents one processed scan in the session ledger. Events are
// never mutated after creation; they are removed individually or in bulk.
type ScanEvent struct {
	Seq        int64            `json:"seq"`
	Timestamp  time.Time        `json:"timestamp"`
	RawInput   string           `json:"raw_input"`
	Identifier string           `json:"identifier"`
	Valid      bool             `json:"valid"`
	Warnings   []Warning        `json:"warnings,omitempty"`
	Reference  *ReferenceRecord `json:"reference,omitempty"`
}

// HasWarning reports whether the event carries the given warning code.
func (e *ScanEvent) HasWarning(code WarningCode) bool {
	for _, w := range e.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether the event records a repeat scan.
func (e *ScanEvent) IsDuplicate() bool {
	return e.HasWarning(WarningDuplicate)
}

// WarningCodes returns the event's warning codes in order.
func (e *ScanEvent) WarningCodes() []WarningCode {
	codes := make([]WarningCode, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

// SessionSnapshot is the export/import form of a counting session. Restoring
// a snapshot replays the events so that the derived seen set and every
// subsequent classification come out identical.
type SessionSnapshot struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	LibraryCode  string      `json:"library_code"`
	LocationCode string      `json:"location_code,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Events       []ScanEvent `json:"scan_events"`
}

// Scope returns the scope the snapshot's session was counted under.
func (s *SessionSnapshot) Scope() Scope {
	return Scope{LibraryCode: s.LibraryCode, LocationCode: s.LocationCode}
}
