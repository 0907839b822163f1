package scorer

import (
	"sort"
	"strings"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Impact composite weights.
const (
	impactGeoWeight      = 0.3
	impactDurationWeight = 0.2
	impactSectorWeight   = 0.3
	impactSeverityWeight = 0.2
)

// durationImpact maps (eventType, severity) to a normalized duration score.
// Unknown combinations fall back to the default.
var durationImpact = map[string]map[model.Severity]float64{
	"earthquake": {model.SeverityCritical: 1.0, model.SeverityWarning: 0.6, model.SeverityWatch: 0.3},
	"weather":    {model.SeverityCritical: 0.8, model.SeverityWarning: 0.5, model.SeverityWatch: 0.25},
	"transport":  {model.SeverityCritical: 0.7, model.SeverityWarning: 0.45, model.SeverityWatch: 0.2},
	"news":       {model.SeverityCritical: 0.5, model.SeverityWarning: 0.35, model.SeverityWatch: 0.15},
}

const durationImpactDefault = 0.3

// durationDays estimates how many days a disruption lasts, by event type
// and severity. Types absent from the table get the default with lower
// forecast confidence.
var durationDays = map[string]map[model.Severity]int{
	"earthquake": {model.SeverityCritical: 14, model.SeverityWarning: 5, model.SeverityWatch: 2},
	"weather":    {model.SeverityCritical: 7, model.SeverityWarning: 3, model.SeverityWatch: 1},
	"transport":  {model.SeverityCritical: 10, model.SeverityWarning: 3, model.SeverityWatch: 1},
}

const durationDaysDefault = 3

// severityImpact maps the (cleaned) severity hint directly to a sub-score.
func severityImpact(severity model.Severity) float64 {
	switch severity {
	case model.SeverityCritical:
		return 1.0
	case model.SeverityWarning:
		return 0.6
	case model.SeverityWatch:
		return 0.3
	default:
		return 0.3
	}
}

// highImpactStrategies is prepended when the composite impact score is high.
var highImpactStrategies = []string{
	"Activate emergency procurement protocols",
	"Contact backup suppliers immediately",
	"Consider expedited shipping for critical items",
	"Increase safety stock levels for affected routes",
}

// typeStrategies is appended after the high-impact block, keyed by event type.
var typeStrategies = map[string][]string{
	"weather": {
		"Monitor weather forecasts for route planning",
		"Consider alternative transportation modes",
		"Coordinate with logistics partners for rerouting",
	},
	"earthquake": {
		"Assess supplier facility damage",
		"Activate disaster recovery plans",
		"Consider temporary supplier alternatives",
	},
	"transport": {
		"Explore alternative routes and carriers",
		"Negotiate priority handling with logistics providers",
		"Consider multimodal transportation options",
	},
}

// AssessImpact computes the composite operational impact of an observation:
// geographic, duration, sector and severity sub-scores, affected trade
// routes, financial exposure and mitigation strategies. It never fails; any
// field it cannot compute resolves to its documented default.
func (s *Scorer) AssessImpact(obs model.Observation) model.ImpactAssessment {
	breakdown := model.ImpactBreakdown{
		Geographic: s.geographicImpact(obs.Location),
		Duration:   durationImpactScore(obs.EventType, obs.Severity),
		Sector:     s.sectorImpact(obs),
		Severity:   severityImpact(obs.Severity),
	}
	breakdown.ImpactScore = round3(
		impactGeoWeight*breakdown.Geographic +
			impactDurationWeight*breakdown.Duration +
			impactSectorWeight*breakdown.Sector +
			impactSeverityWeight*breakdown.Severity)

	routes := s.affectedRoutes(obs.Location)
	duration := estimateDuration(obs.EventType, obs.Severity)

	return model.ImpactAssessment{
		Breakdown:            breakdown,
		AffectedRoutes:       routes,
		Duration:             duration,
		Financial:            s.financialImpact(breakdown.ImpactScore, routes, duration),
		MitigationStrategies: mitigationStrategies(breakdown.ImpactScore, obs.EventType),
	}
}

// geographicImpact looks the location up against the three nested hub tiers.
func (s *Scorer) geographicImpact(location string) float64 {
	loc := strings.ToLower(location)
	switch {
	case loc == "":
		return 0.3
	case containsAny(loc, s.tables.ImpactTier1):
		return 1.0
	case containsAny(loc, s.tables.ImpactTier2):
		return 0.8
	case containsAny(loc, s.tables.ImpactTier3):
		return 0.6
	default:
		return 0.3
	}
}

func durationImpactScore(eventType string, severity model.Severity) float64 {
	if row, ok := durationImpact[eventType]; ok {
		if v, ok := row[severity]; ok {
			return v
		}
	}
	return durationImpactDefault
}

// sectorImpact averages a per-sector hit score across all five fixed
// sectors. A single matched sector only pulls the average up partially:
// broad sector impact requires multiple matches.
func (s *Scorer) sectorImpact(obs model.Observation) float64 {
	text := searchText(obs)

	total := 0.0
	for _, keywords := range s.tables.SectorKeywords {
		if containsAny(text, keywords) {
			total += 0.8
		} else {
			total += 0.2
		}
	}
	return total / float64(len(s.tables.SectorKeywords))
}

// affectedRoutes substring-matches the location against the route gazetteer.
// A location may sit on several routes. The result is sorted for stable output.
func (s *Scorer) affectedRoutes(location string) []string {
	loc := strings.ToLower(location)
	if loc == "" {
		return nil
	}

	var routes []string
	for route, locations := range s.tables.RouteLocations {
		if containsAny(loc, locations) {
			routes = append(routes, route)
		}
	}
	sort.Strings(routes)
	return routes
}

func estimateDuration(eventType string, severity model.Severity) model.DurationEstimate {
	row, known := durationDays[eventType]
	est := model.DurationEstimate{AvgDays: durationDaysDefault, Confidence: 0.4}
	if known {
		est.Confidence = 0.7
		if d, ok := row[severity]; ok {
			est.AvgDays = d
		}
	}
	return est
}

// financialImpact sums per-route base daily volumes scaled by the impact
// score. No matched routes means zero exposure everywhere.
func (s *Scorer) financialImpact(impactScore float64, routes []string, duration model.DurationEstimate) model.FinancialImpact {
	if len(routes) == 0 {
		return model.FinancialImpact{}
	}

	var daily float64
	for _, route := range routes {
		daily += s.tables.RouteBaseDailyUsdMillions[route] * impactScore
	}
	daily = round1(daily)

	return model.FinancialImpact{
		DailyImpactUsdMillions:     daily,
		WeeklyImpactUsdMillions:    round1(daily * 7),
		TotalImpactUsdMillions:     round1(daily * float64(duration.AvgDays)),
		AffectedTradeVolumePercent: round1(impactScore * 100),
	}
}

// mitigationStrategies builds the ordered strategy list: the high-impact
// block first when the composite score crosses 0.7, then the event-type
// block if one exists.
func mitigationStrategies(impactScore float64, eventType string) []string {
	var strategies []string
	if impactScore >= 0.7 {
		strategies = append(strategies, highImpactStrategies...)
	}
	if block, ok := typeStrategies[eventType]; ok {
		strategies = append(strategies, block...)
	}
	return strategies
}
