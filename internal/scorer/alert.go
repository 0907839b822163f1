package scorer

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Alert score weights.
const (
	alertConfidenceWeight = 0.25
	alertRelevanceWeight  = 0.25
	alertImpactWeight     = 0.30
	alertUrgencyWeight    = 0.20
)

// Alert thresholds. ShouldAlert and the level bands are independent: an
// alertScore in [0.5, 0.6) fires while still labeled "watch".
const (
	criticalThreshold  = 0.8
	warningThreshold   = 0.6
	watchThreshold     = 0.4
	shouldAlertAt      = 0.5
	escalationNeededAt = 0.8
)

// typeUrgency rates the time-sensitivity of each event type.
var typeUrgency = map[string]float64{
	"earthquake":  0.9,
	"weather":     0.7,
	"transport":   0.6,
	"port_status": 0.5,
	"news":        0.4,
}

const typeUrgencyDefault = 0.5

// severityMultiplier scales urgency by the (cleaned) severity hint.
var severityMultiplier = map[model.Severity]float64{
	model.SeverityCritical: 1.0,
	model.SeverityWarning:  0.7,
	model.SeverityWatch:    0.4,
}

const severityMultiplierDefault = 0.5

// BuildAlert combines confidence, relevance, impact and urgency into one
// ranked, classified alert for the cleaned observation.
func (s *Scorer) BuildAlert(confidence, relevance float64, impact model.ImpactAssessment, obs model.Observation) model.Alert {
	urgency := round3(urgencyScore(obs.EventType, obs.Severity))

	alertScore := round3(
		alertConfidenceWeight*confidence +
			alertRelevanceWeight*relevance +
			alertImpactWeight*impact.Breakdown.ImpactScore +
			alertUrgencyWeight*urgency)

	alert := model.Alert{
		ID:          uuid.New().String(),
		Observation: obs,
		Breakdown: model.ScoreBreakdown{
			Confidence: confidence,
			Relevance:  relevance,
			Impact:     impact.Breakdown,
			Urgency:    urgency,
		},
		AlertScore:           alertScore,
		AlertLevel:           alertLevel(alertScore),
		PriorityRank:         priorityRank(alertScore, impact),
		ShouldAlert:          alertScore >= shouldAlertAt,
		EscalationNeeded:     alertScore >= escalationNeededAt,
		AffectedRoutes:       impact.AffectedRoutes,
		Financial:            impact.Financial,
		Duration:             impact.Duration,
		MitigationStrategies: impact.MitigationStrategies,
		CreatedAt:            time.Now().UTC(),
	}

	zap.L().Debug("scorer: alert built",
		zap.String("source", string(obs.Source)),
		zap.String("event_type", obs.EventType),
		zap.Float64("alert_score", alertScore),
		zap.String("level", string(alert.AlertLevel)),
		zap.Int("priority_rank", alert.PriorityRank),
	)

	return alert
}

// urgencyScore is the event type's urgency scaled by severity.
func urgencyScore(eventType string, severity model.Severity) float64 {
	tu, ok := typeUrgency[eventType]
	if !ok {
		tu = typeUrgencyDefault
	}
	sm, ok := severityMultiplier[severity]
	if !ok {
		sm = severityMultiplierDefault
	}
	return tu * sm
}

// alertLevel maps an alert score to its severity band. Bands are half-open
// on the lower bound and evaluated top-down, so the highest qualifying tier
// wins.
func alertLevel(alertScore float64) model.Severity {
	switch {
	case alertScore >= criticalThreshold:
		return model.SeverityCritical
	case alertScore >= warningThreshold:
		return model.SeverityWarning
	case alertScore >= watchThreshold:
		return model.SeverityWatch
	default:
		return model.SeverityInfo
	}
}

// priorityRank converts the alert score to a 1-100 rank (1 = highest
// priority), then stacks financial and route deductions. Each deduction
// re-clamps at the floor of 1 before the next is considered.
func priorityRank(alertScore float64, impact model.ImpactAssessment) int {
	rank := clampRank(int(math.Round((1 - alertScore) * 80)))

	daily := impact.Financial.DailyImpactUsdMillions
	switch {
	case daily > 100:
		rank -= 20
	case daily > 50:
		rank -= 10
	case daily > 10:
		rank -= 5
	}
	rank = clampRank(rank)

	if hasChokepointRoute(impact.AffectedRoutes) {
		rank -= 15
	} else if len(impact.AffectedRoutes) > 0 {
		rank -= 5
	}

	return clampRank(rank)
}

// hasChokepointRoute reports whether any matched route is one of the two
// canal chokepoints, which always jump the queue.
func hasChokepointRoute(routes []string) bool {
	for _, r := range routes {
		if r == "panama_canal" || r == "suez_canal" {
			return true
		}
	}
	return false
}

func clampRank(rank int) int {
	if rank < 1 {
		return 1
	}
	if rank > 100 {
		return 100
	}
	return rank
}
