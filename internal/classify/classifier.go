// Package classify implements the barcode classification state machine: one
// raw scan in, one deterministic outcome out. Malformed input degrades to a
// warning-bearing scan event, never to an error, so a counting session can
// not halt on bad input.
package classify

import (
	"strings"
	"sync"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
	"github.com/ismailkaraca/kohasayim/internal/normalize"
)

// OutcomeKind says which of the three classification results occurred.
type OutcomeKind int

const (
	// OutcomeIgnored means nothing was processed and nothing was logged.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeISBN means the scan was a valid ISBN-13. ISBN hits are
	// surfaced to the caller but never appended to the ledger and never
	// enter the seen set.
	OutcomeISBN
	// OutcomeLogged means a scan event was appended to the ledger.
	OutcomeLogged
)

// Outcome is the result of classifying one raw scan. Exactly one of the
// three kinds is produced per call.
type Outcome struct {
	Kind    OutcomeKind
	Event   *models.ScanEvent // set for OutcomeLogged
	Warning models.Warning    // set for OutcomeISBN
}

// Notifier is the per-scan side channel (sound, modal, toast). It is
// suppressed in silent (bulk) mode for everything except ISBN hits.
type Notifier func(Outcome)

// Classifier runs scans against the catalog index and the session ledger
// under a fixed scope. Deterministic given identical inputs and ledger state.
// Scans are serialized: the seen check and the resulting append must be one
// atomic step, or two concurrent scans of one barcode both log clean events.
type Classifier struct {
	mu        sync.Mutex
	scope     models.Scope
	index     *catalog.Index
	ledger    *ledger.Ledger
	directory *Directory
	notify    Notifier
}

// New creates a classifier for one counting session.
func New(scope models.Scope, index *catalog.Index, led *ledger.Ledger, directory *Directory) *Classifier {
	return &Classifier{
		scope:     scope,
		index:     index,
		ledger:    led,
		directory: directory,
	}
}

// SetNotifier installs the per-scan notification side channel.
func (c *Classifier) SetNotifier(fn Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

// Scope returns the session scope the classifier was built with.
func (c *Classifier) Scope() models.Scope {
	return c.scope
}

// Ledger returns the session ledger the classifier writes to.
func (c *Classifier) Ledger() *ledger.Ledger {
	return c.ledger
}

// Index returns the catalog index consulted on lookups.
func (c *Classifier) Index() *catalog.Index {
	return c.index
}

// Classify processes one raw scan with notifications enabled.
func (c *Classifier) Classify(raw string) Outcome {
	return c.classify(raw, false)
}

// ClassifySilent processes one raw scan with the notification side channel
// suppressed, for bulk runs. Scan events and the seen set are still updated.
func (c *Classifier) ClassifySilent(raw string) Outcome {
	return c.classify(raw, true)
}

func (c *Classifier) classify(raw string, silent bool) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := normalize.Normalize(raw, c.scope)

	if result.Kind == normalize.KindIgnored {
		return Outcome{Kind: OutcomeIgnored}
	}

	if result.Kind == normalize.KindISBN {
		outcome := Outcome{
			Kind:    OutcomeISBN,
			Warning: newWarning(models.WarningISBNDetected),
		}
		// ISBN hits are exempt from bulk suppression: the caller is
		// always informed.
		if c.notify != nil {
			c.notify(outcome)
		}
		return outcome
	}

	identifier := result.Identifier
	if identifier == "" {
		// Nothing scannable survived digit-stripping; keep the raw form
		// so the rejected row is recognizable in the log.
		identifier = strings.TrimSpace(raw)
	}

	// Duplicate short-circuit: no further checks run for a repeat scan.
	if c.ledger.Seen(identifier) {
		event := c.ledger.NewEvent(raw, identifier)
		event.Warnings = []models.Warning{newWarning(models.WarningDuplicate)}
		if first, ok := c.ledger.FirstEvent(identifier); ok && first.Reference != nil {
			event.Reference = first.Reference
		} else if rec, ok := c.index.Lookup(identifier); ok {
			event.Reference = rec
		}
		return c.append(event, silent)
	}

	event := c.ledger.NewEvent(raw, identifier)

	// Structural check. A foreign or unknown prefix terminates
	// classification before any catalog field check, even when a catalog
	// record exists under that identifier.
	expectedPrefix := normalize.ExpectedPrefix(c.scope.LibraryCode)
	if len(identifier) == 12 && !strings.HasPrefix(identifier, expectedPrefix) {
		if library, ok := c.directory.MatchPrefix(identifier); ok {
			event.Warnings = []models.Warning{
				newWarningf(models.WarningWrongLibrary, "item belongs to %s", library.Name),
			}
		} else {
			event.Warnings = []models.Warning{newWarning(models.WarningInvalidStructure)}
		}
		return c.append(event, silent)
	}

	if record, ok := c.index.Lookup(identifier); ok {
		event.Reference = record
		var warnings []models.Warning
		if c.scope.LocationCode != "" && record.Location != c.scope.LocationCode {
			warnings = append(warnings, newWarning(models.WarningLocationMismatch))
		}
		if !record.Loanable() {
			warnings = append(warnings, newWarning(models.WarningNotLoanable))
		}
		if !record.InCollection() {
			warnings = append(warnings, newWarning(models.WarningNotInCollection))
		}
		if record.OnLoan {
			warnings = append(warnings, newWarning(models.WarningOnLoan))
		}
		sortWarnings(warnings)
		event.Warnings = warnings
	} else if result.AutoCompleted {
		event.Warnings = []models.Warning{newWarning(models.WarningAutoCompleteNotFound)}
	} else {
		event.Warnings = []models.Warning{newWarning(models.WarningDeleted)}
	}

	return c.append(event, silent)
}

// append finalizes validity, logs the event and fires the side channel.
func (c *Classifier) append(event *models.ScanEvent, silent bool) Outcome {
	event.Valid = len(event.Warnings) == 0
	c.ledger.Append(event)

	outcome := Outcome{Kind: OutcomeLogged, Event: event}
	if c.notify != nil && !silent {
		c.notify(outcome)
	}
	return outcome
}
