package model

import "time"

// Source identifies the upstream data source that produced an observation.
type Source string

const (
	SourceWeather    Source = "weather"
	SourceNews       Source = "news"
	SourceEarthquake Source = "earthquake"
	SourceTransport  Source = "transport"
	SourceUnknown    Source = "unknown"
)

// KnownSources lists the sources the pipeline has reliability data for.
// Observations from other sources are still scored, at a low reliability weight.
var KnownSources = []Source{SourceWeather, SourceNews, SourceEarthquake, SourceTransport}

// IsKnown reports whether the source is in the known enumeration.
func (s Source) IsKnown() bool {
	for _, k := range KnownSources {
		if s == k {
			return true
		}
	}
	return false
}

// Severity is the four-level severity scale used both for source hints
// and for final alert levels.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityWatch    Severity = "watch"
	SeverityInfo     Severity = "info"
)

// IsValid reports whether the severity is one of the four enumerated values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityWatch, SeverityInfo:
		return true
	}
	return false
}

// Observation is a single candidate disruption signal from one data source.
// It is immutable after validation except for the cleaned-field overwrite the
// validator performs on its copy.
type Observation struct {
	Source      Source     `json:"source"`
	EventType   string     `json:"event_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Severity    Severity   `json:"severity"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`

	// Source-specific fields.
	Magnitude float64 `json:"magnitude,omitempty"` // seismic only
	URL       string  `json:"url,omitempty"`
}

// ValidationResult wraps an observation with the outcome of validation.
// An observation with IsValid=false never proceeds to scoring.
type ValidationResult struct {
	IsValid     bool        `json:"is_valid"`
	Errors      []string    `json:"errors,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	Cleaned     Observation `json:"cleaned_observation"`
	ValidatedAt time.Time   `json:"validated_at"`
}
