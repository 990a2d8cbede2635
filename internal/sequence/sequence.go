// Package sequence derives the human-readable sequential identifiers used
// across the application: protocol numbers, issued-document numbers and
// same-day service tickets. Ordinals come from counting current in-scope
// records plus one, not from a persisted counter — within one process the
// owning service serializes issuance, and gaps may appear after deletions.
// Deployments with multiple writer processes must move issuance behind a
// database-side counter or a unique constraint with retry.
package sequence

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upper handles accented school identifiers (e.g. "émile") correctly where
// a byte-wise upcase would not.
var upper = cases.Upper(language.BrazilianPortuguese)

// Prefix derives the short scope prefix of a number: the first three letters
// of the scope identifier, upper-cased with full Unicode case mapping. Short
// identifiers are used whole; an empty scope yields "GER" (geral).
func Prefix(scopeID string) string {
	s := strings.TrimSpace(scopeID)
	if s == "" {
		return "GER"
	}
	runes := []rune(s)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return upper.String(string(runes))
}

// ProtocolNumber formats a protocol or document number for (scope, year):
// e.g. "ESC-2026-0007". ordinal is 1-based and zero-padded to four digits;
// numbers are monotonically increasing within a (scope, year) pair and never
// reused even after the underlying record is deleted.
func ProtocolNumber(scopeID string, year, ordinal int) string {
	return fmt.Sprintf("%s-%d-%04d", Prefix(scopeID), year, ordinal)
}

// TicketNumber formats a same-day service ticket: a priority class letter
// followed by a three-digit ordinal, e.g. "U-003", "P-014", "N-102".
func TicketNumber(priority string, ordinal int) string {
	class := "N"
	switch priority {
	case "urgent":
		class = "U"
	case "preferential":
		class = "P"
	}
	return fmt.Sprintf("%s-%03d", class, ordinal)
}

// Year returns the calendar year used to scope protocol numbering.
func Year(t time.Time) int { return t.Year() }

// Day returns the calendar-day key used to scope ticket numbering.
func Day(t time.Time) string { return t.Format("2006-01-02") }
