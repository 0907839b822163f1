// Package validate normalizes and sanity-checks raw observations before
// they enter scoring. Only this package can reject a record; everything
// downstream operates on the cleaned copy it produces.
package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Validate checks required fields, repairs what it can, and returns the
// cleaned observation. Errors block scoring; warnings do not.
func Validate(obs model.Observation) model.ValidationResult {
	result := model.ValidationResult{
		IsValid:     true,
		Cleaned:     obs,
		ValidatedAt: time.Now().UTC(),
	}

	// Required fields. Missing any of them drops the record.
	if obs.Source == "" {
		result.Errors = append(result.Errors, "missing required field: source")
	}
	if obs.EventType == "" {
		result.Errors = append(result.Errors, "missing required field: event_type")
	}
	if obs.Title == "" {
		result.Errors = append(result.Errors, "missing required field: title")
	}
	if obs.Severity == "" {
		result.Errors = append(result.Errors, "missing required field: severity")
	}
	if len(result.Errors) > 0 {
		result.IsValid = false
	}

	// Unknown sources are scored anyway, at a low reliability weight.
	if obs.Source != "" && !obs.Source.IsKnown() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unknown source %q, scoring with default reliability", obs.Source))
	}

	// A severity outside the enumeration is repaired, never fatal.
	if obs.Severity != "" && !obs.Severity.IsValid() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("invalid severity %q, defaulting to watch", obs.Severity))
		result.Cleaned.Severity = model.SeverityWatch
	}

	cleanCoordinates(&result)

	result.Cleaned.Title = CleanText(obs.Title)
	result.Cleaned.Description = CleanText(obs.Description)
	result.Cleaned.Location = strings.TrimSpace(obs.Location)

	return result
}

// cleanCoordinates nulls the lat/lon pair when either value is out of range
// or when only one of the two is present (a dangling single coordinate is
// useless for geographic matching).
func cleanCoordinates(result *model.ValidationResult) {
	lat := result.Cleaned.Latitude
	lon := result.Cleaned.Longitude

	switch {
	case lat == nil && lon == nil:
		return
	case lat == nil || lon == nil:
		result.Warnings = append(result.Warnings,
			"dangling single coordinate, clearing latitude and longitude")
		result.Cleaned.Latitude = nil
		result.Cleaned.Longitude = nil
	case *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("coordinates out of range (%.4f, %.4f), clearing both", *lat, *lon))
		result.Cleaned.Latitude = nil
		result.Cleaned.Longitude = nil
	}
}

// CleanText strips characters outside the allowed set (letters, digits,
// underscore, space, and - . , ! ? ( ) :), collapses whitespace runs to a
// single space, and trims. Cleaning an already-clean string is a no-op.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true // swallow leading whitespace
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case allowedRune(r):
			b.WriteRune(r)
			lastSpace = false
		}
		// Everything else is dropped.
	}

	return strings.TrimRight(b.String(), " ")
}

func allowedRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return true
	}
	switch r {
	case '-', '.', ',', '!', '?', '(', ')', ':':
		return true
	}
	return false
}
