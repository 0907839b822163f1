package scorer

import (
	"math"
	"strings"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Confidence component weights.
const (
	confSourceWeight   = 0.25
	confKeywordWeight  = 0.30
	confSeverityWeight = 0.25
	confGeoWeight      = 0.20
)

// keywordSaturation is the match count at which the keyword score caps at 1.0.
const keywordSaturation = 5

// ReliabilityProvider supplies a trailing reliability signal for a source,
// typically backed by the data quality monitor's assessment history.
type ReliabilityProvider interface {
	// SourceReliability returns the trailing overall quality score for the
	// source and whether any history exists.
	SourceReliability(source string) (float64, bool)
}

// Scorer computes confidence, relevance, impact and alert scores from the
// fixed tables. It is stateless and safe for concurrent use; the optional
// reliability provider must be concurrency-safe itself.
type Scorer struct {
	tables      *Tables
	reliability ReliabilityProvider
}

// New creates a Scorer. A nil tables argument selects the defaults; a nil
// provider keeps the static source weights.
func New(tables *Tables, reliability ReliabilityProvider) *Scorer {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Scorer{tables: tables, reliability: reliability}
}

// Confidence scores how likely the observation is a genuine, well-sourced
// disruption. It operates on the cleaned observation only.
func (s *Scorer) Confidence(obs model.Observation) float64 {
	score := confSourceWeight*s.sourceWeight(obs.Source) +
		confKeywordWeight*s.keywordScore(obs) +
		confSeverityWeight*s.severityIndicatorScore(obs) +
		confGeoWeight*s.geoScore(obs.Location)

	return round3(clamp01(score))
}

// Relevance scores how supply-chain-relevant the observation's content is.
func (s *Scorer) Relevance(obs model.Observation) float64 {
	matches := s.keywordMatches(searchText(obs))

	score := 0.6 * float64(matches) / float64(len(s.tables.SupplyChainKeywords))
	score += eventTypeBonus(obs.EventType)
	score += s.locationBonus(obs.Location)

	return round3(math.Min(1, score))
}

// sourceWeight returns the reliability weight for the source. When a
// reliability provider is wired in, the trailing quality signal is blended
// with the static table so degrading sources get down-weighted over time.
func (s *Scorer) sourceWeight(source model.Source) float64 {
	static := s.tables.BaseSourceWeight(source)
	if s.reliability == nil {
		return static
	}
	trailing, ok := s.reliability.SourceReliability(string(source))
	if !ok {
		return static
	}
	return clamp01(0.7*static + 0.3*trailing)
}

// keywordMatches counts the supply-chain keywords present in the haystack.
// Both the confidence and relevance scorers count against the same list.
func (s *Scorer) keywordMatches(text string) int {
	matches := 0
	for _, kw := range s.tables.SupplyChainKeywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	return matches
}

// keywordScore is the supply-chain keyword density: match count over the
// saturation point, capped at 1.0.
func (s *Scorer) keywordScore(obs model.Observation) float64 {
	matches := s.keywordMatches(searchText(obs))
	return math.Min(1, float64(matches)/keywordSaturation)
}

// severityIndicatorScore scans the text against the three ordered indicator
// wordlists. The first matching tier wins, critical checked first.
func (s *Scorer) severityIndicatorScore(obs model.Observation) float64 {
	text := searchText(obs)
	switch {
	case containsAny(text, s.tables.CriticalIndicators):
		return 1.0
	case containsAny(text, s.tables.WarningIndicators):
		return 0.7
	case containsAny(text, s.tables.WatchIndicators):
		return 0.4
	default:
		return 0.2
	}
}

// geoScore rates the location's supply-chain salience: tier-1 hub, major
// region, or neither.
func (s *Scorer) geoScore(location string) float64 {
	loc := strings.ToLower(location)
	switch {
	case loc == "":
		return 0.3
	case containsAny(loc, s.tables.Tier1Hubs):
		return 1.0
	case containsAny(loc, s.tables.MajorRegions):
		return 0.7
	default:
		return 0.3
	}
}

func (s *Scorer) locationBonus(location string) float64 {
	if containsAny(strings.ToLower(location), s.tables.StrategicLocationKeywords) {
		return 0.1
	}
	return 0
}

func eventTypeBonus(eventType string) float64 {
	switch eventType {
	case "weather", "earthquake", "port_status", "transport":
		return 0.3
	case "news":
		return 0.2
	default:
		return 0
	}
}

// searchText is the lowercased title+description haystack all keyword
// scorers share.
func searchText(obs model.Observation) string {
	return strings.ToLower(obs.Title + " " + obs.Description)
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// round3 rounds to 3 decimal places for reproducibility and display.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// round1 rounds to 1 decimal place, used for monetary figures.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
