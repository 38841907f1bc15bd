package normalize

import (
	"strconv"
	"strings"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Kind classifies the outcome of normalizing a raw scan.
type Kind int

const (
	// KindIgnored means the input was empty or no library scope was set;
	// nothing downstream should run.
	KindIgnored Kind = iota
	// KindISBN means the input is a valid ISBN-13, not an item barcode.
	KindISBN
	// KindNormal means the input normalized to an item identifier.
	KindNormal
)

// Result represents the outcome of normalizing one raw scan.
type Result struct {
	Kind          Kind
	Identifier    string // canonical identifier for KindNormal
	Digits        string // digit-stripped form of the raw input
	AutoCompleted bool   // identifier was expanded with the library prefix
}

// ExpectedPrefix returns the identifier prefix for a library code:
// the numeric code plus 1000, as a string. An empty string is returned for
// non-numeric codes.
func ExpectedPrefix(libraryCode string) string {
	code, err := strconv.Atoi(strings.TrimSpace(libraryCode))
	if err != nil {
		return ""
	}
	return strconv.Itoa(code + 1000)
}

// stripNonDigits removes every non-digit rune.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidISBN13 reports whether digits is a 13-digit ISBN with a correct
// weighted checksum. Only the 978/979 bookland prefixes are accepted.
func IsValidISBN13(digits string) bool {
	if len(digits) != 13 {
		return false
	}
	if !strings.HasPrefix(digits, "978") && !strings.HasPrefix(digits, "979") {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return check == int(digits[12]-'0')
}

// padStart left-pads s with zeros up to width. Strings already at or beyond
// width are returned unchanged.
func padStart(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Normalize turns a raw scanned or typed string into a canonical identifier,
// or detects it as an ISBN. The steps run in a fixed order: ISBN detection on
// the digit-stripped input first, then truncation of overlong codes to 12
// digits, then auto-completion of short codes with the library prefix.
//
// Auto-completion pads the full digit string to 12-len(prefix) characters
// before prepending the prefix. For inputs longer than that the result
// exceeds 12 characters; this matches the long-standing behavior counting
// sheets were produced with, so it is kept as is.
func Normalize(raw string, scope models.Scope) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || scope.LibraryCode == "" {
		return Result{Kind: KindIgnored}
	}

	digits := stripNonDigits(trimmed)
	if IsValidISBN13(digits) {
		return Result{Kind: KindISBN, Digits: digits}
	}

	expectedPrefix := ExpectedPrefix(scope.LibraryCode)
	if expectedPrefix == "" {
		return Result{Kind: KindIgnored}
	}

	identifier := digits
	autoCompleted := false
	switch {
	case len(digits) >= 13:
		identifier = digits[:12]
	case len(digits) > 0 && len(digits) < 12:
		identifier = expectedPrefix + padStart(digits, 12-len(expectedPrefix))
		autoCompleted = true
	}

	return Result{
		Kind:          KindNormal,
		Identifier:    identifier,
		Digits:        digits,
		AutoCompleted: autoCompleted,
	}
}
