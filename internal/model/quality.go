package model

import "time"

// QualityAssessment is the statistical health of one batch of observations
// from a single source, independent of any individual alert's score.
type QualityAssessment struct {
	Source       string    `json:"source"`
	OverallScore float64   `json:"overall_score"`
	Completeness float64   `json:"completeness"`
	Accuracy     float64   `json:"accuracy"`
	Consistency  float64   `json:"consistency"`
	Timeliness   float64   `json:"timeliness"`
	Validity     float64   `json:"validity"`
	Issues       []string  `json:"issues,omitempty"`
	SampleSize   int       `json:"sample_size"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// DimensionAverages holds per-dimension trailing averages for a trend query.
type DimensionAverages struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
	Validity     float64 `json:"validity"`
}

// QualityTrend summarizes a source's assessments over a trailing window.
type QualityTrend struct {
	Source     string            `json:"source"`
	Count      int               `json:"count"`
	Average    float64           `json:"average"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	StdDev     float64           `json:"std_dev"`
	Dimensions DimensionAverages `json:"dimensions"`
}
