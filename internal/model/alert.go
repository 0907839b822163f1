package model

import "time"

// ImpactBreakdown holds the four impact sub-scores and their weighted composite.
// All values are in [0,1], rounded to 3 decimal places.
type ImpactBreakdown struct {
	Geographic  float64 `json:"geographic"`
	Duration    float64 `json:"duration"`
	Sector      float64 `json:"sector"`
	Severity    float64 `json:"severity"`
	ImpactScore float64 `json:"impact_score"`
}

// ScoreBreakdown is the per-alert explanation of how the final score was built.
type ScoreBreakdown struct {
	Confidence float64         `json:"confidence"`
	Relevance  float64         `json:"relevance"`
	Impact     ImpactBreakdown `json:"impact"`
	Urgency    float64         `json:"urgency"`
}

// DurationEstimate is a rough forecast of how long a disruption will last.
type DurationEstimate struct {
	AvgDays    int     `json:"estimated_avg_days"`
	Confidence float64 `json:"confidence"`
}

// FinancialImpact estimates the monetary exposure of a disruption across
// the matched trade routes. Weekly is always Daily x 7.
type FinancialImpact struct {
	DailyImpactUsdMillions     float64 `json:"daily_impact_usd_millions"`
	WeeklyImpactUsdMillions    float64 `json:"weekly_impact_usd_millions"`
	TotalImpactUsdMillions     float64 `json:"estimated_total_impact_usd_millions"`
	AffectedTradeVolumePercent float64 `json:"affected_trade_volume_percent"`
}

// ImpactAssessment is the impact analyzer's full output for one observation.
type ImpactAssessment struct {
	Breakdown            ImpactBreakdown  `json:"breakdown"`
	AffectedRoutes       []string         `json:"affected_routes"`
	Duration             DurationEstimate `json:"duration_estimate"`
	Financial            FinancialImpact  `json:"financial_impact"`
	MitigationStrategies []string         `json:"mitigation_strategies"`
}

// Recommendation is the mitigation recommender's output, attached to the
// alert alongside (not merged with) the impact analyzer's strategies.
type Recommendation struct {
	ImmediateActions  []string `json:"immediate_actions"`
	MonitoringActions []string `json:"monitoring_actions"`
	EscalationNeeded  bool     `json:"escalation_needed"`
}

// Alert is the terminal entity of the pipeline: one scored, classified
// output per validated observation. Alerts never mutate after creation.
type Alert struct {
	ID               string          `json:"id"`
	Observation      Observation     `json:"observation"`
	Breakdown        ScoreBreakdown  `json:"score_breakdown"`
	AlertScore       float64         `json:"alert_score"`
	AlertLevel       Severity        `json:"alert_level"`
	PriorityRank     int             `json:"priority_rank"`
	ShouldAlert      bool            `json:"should_alert"`
	EscalationNeeded bool            `json:"escalation_needed"`
	AffectedRoutes   []string        `json:"affected_routes"`
	Financial        FinancialImpact `json:"financial_impact"`
	Duration         DurationEstimate `json:"duration_estimate"`

	// MitigationStrategies comes from the impact analyzer; Recommendation
	// from the mitigation recommender. Both are preserved unmerged because
	// downstream consumers depend on each shape separately.
	MitigationStrategies []string       `json:"mitigation_strategies"`
	Recommendation       Recommendation `json:"recommendation"`

	// Warnings carries the validation warnings forward for audit, so a
	// consumer can detect scores computed from repaired/defaulted fields.
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
