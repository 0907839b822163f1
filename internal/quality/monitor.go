// Package quality assesses the statistical health of observation batches
// per source: completeness, accuracy, consistency, timeliness and validity.
// Assessments accumulate in a per-source history used for trend queries and
// for feeding a trailing reliability signal back into confidence scoring.
package quality

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/scorer"
)

// Dimension thresholds below which an issue is flagged.
const (
	completenessThreshold = 0.95
	accuracyThreshold     = 0.90
	consistencyThreshold  = 0.85
	timelinessThreshold   = 0.90
)

// requiredFieldCount is the number of fields completeness checks per record.
const requiredFieldCount = 5

// reliabilityWindow bounds the history used for the trailing reliability
// signal consumed by the confidence scorer.
const reliabilityWindow = 24 * time.Hour

// Monitor owns the per-source assessment history. Writes are funneled
// through a single mutex; trend reads take a snapshot under a read lock.
type Monitor struct {
	tables *scorer.Tables

	mu      sync.RWMutex
	history map[string][]model.QualityAssessment
}

// NewMonitor creates a Monitor. Nil tables selects the scorer defaults
// (the accuracy baseline shares the confidence scorer's source weights).
func NewMonitor(tables *scorer.Tables) *Monitor {
	if tables == nil {
		tables = scorer.DefaultTables()
	}
	return &Monitor{
		tables:  tables,
		history: make(map[string][]model.QualityAssessment),
	}
}

// Assess scores a batch of observations from one source across the five
// quality dimensions, records the assessment in the source's history, and
// returns it.
func (m *Monitor) Assess(batch []model.Observation, source string) model.QualityAssessment {
	a := m.assess(batch, source, time.Now().UTC())

	m.mu.Lock()
	m.history[source] = append(m.history[source], a)
	m.mu.Unlock()

	zap.L().Info("quality: batch assessed",
		zap.String("source", source),
		zap.Int("sample_size", a.SampleSize),
		zap.Float64("overall", a.OverallScore),
		zap.Int("issues", len(a.Issues)),
	)

	return a
}

func (m *Monitor) assess(batch []model.Observation, source string, now time.Time) model.QualityAssessment {
	a := model.QualityAssessment{
		Source:       source,
		Completeness: m.completeness(batch),
		Accuracy:     m.accuracy(batch, source),
		Consistency:  m.consistency(batch),
		Timeliness:   m.timeliness(batch, now),
		Validity:     m.validity(batch),
		SampleSize:   len(batch),
		AssessedAt:   now,
	}

	a.OverallScore = round3((a.Completeness + a.Accuracy + a.Consistency + a.Timeliness + a.Validity) / 5)

	type check struct {
		name      string
		value     float64
		threshold float64
	}
	for _, c := range []check{
		{"completeness", a.Completeness, completenessThreshold},
		{"accuracy", a.Accuracy, accuracyThreshold},
		{"consistency", a.Consistency, consistencyThreshold},
		{"timeliness", a.Timeliness, timelinessThreshold},
	} {
		if c.value < c.threshold {
			a.Issues = append(a.Issues,
				fmt.Sprintf("%s below threshold: %.3f < %.2f", c.name, c.value, c.threshold))
		}
	}

	return a
}

// completeness is 1 minus the fraction of missing required fields across
// the batch (five fields per record).
func (m *Monitor) completeness(batch []model.Observation) float64 {
	if len(batch) == 0 {
		return 1.0
	}

	missing := 0
	for _, obs := range batch {
		if obs.Source == "" {
			missing++
		}
		if obs.EventType == "" {
			missing++
		}
		if obs.Title == "" {
			missing++
		}
		if obs.Description == "" {
			missing++
		}
		if obs.Severity == "" {
			missing++
		}
	}

	return round3(1 - float64(missing)/float64(len(batch)*requiredFieldCount))
}

// accuracy starts from the source's base reliability and deducts for
// records with invalid coordinates or severity values, averaged over the
// batch and floored at 0.
func (m *Monitor) accuracy(batch []model.Observation, source string) float64 {
	base := m.tables.BaseSourceWeight(model.Source(source))
	if len(batch) == 0 {
		return round3(base)
	}

	var deductions float64
	for _, obs := range batch {
		if invalidCoordinates(obs) {
			deductions += 0.1
		}
		if obs.Severity != "" && !obs.Severity.IsValid() {
			deductions += 0.05
		}
	}

	return round3(math.Max(0, base-deductions/float64(len(batch))))
}

// consistency deducts 0.2 when any invalid severity value appears and 0.1
// when location string lengths are over-dispersed (variance above mean).
func (m *Monitor) consistency(batch []model.Observation) float64 {
	if len(batch) == 0 {
		return 1.0
	}

	score := 1.0
	for _, obs := range batch {
		if obs.Severity != "" && !obs.Severity.IsValid() {
			score -= 0.2
			break
		}
	}

	mean, variance := locationLengthStats(batch)
	if variance > mean {
		score -= 0.1
	}

	return round3(math.Max(0, score))
}

// timeliness averages an age-bucketed score over the batch. Records without
// a timestamp contribute 0.5, as does an empty batch.
func (m *Monitor) timeliness(batch []model.Observation, now time.Time) float64 {
	if len(batch) == 0 {
		return 0.5
	}

	var total float64
	for _, obs := range batch {
		if obs.Timestamp == nil {
			total += 0.5
			continue
		}
		total += ageScore(now.Sub(*obs.Timestamp))
	}

	return round3(total / float64(len(batch)))
}

func ageScore(age time.Duration) float64 {
	switch {
	case age <= time.Hour:
		return 1.0
	case age <= 6*time.Hour:
		return 0.9
	case age <= 24*time.Hour:
		return 0.7
	case age <= 72*time.Hour:
		return 0.5
	default:
		return 0.2
	}
}

// validity is the fraction of per-record field checks that pass: title
// length in [5,200], description length at most 5000, event type at least
// 2 characters. Three checks per record.
func (m *Monitor) validity(batch []model.Observation) float64 {
	if len(batch) == 0 {
		return 1.0
	}

	passed := 0
	for _, obs := range batch {
		if n := len(obs.Title); n >= 5 && n <= 200 {
			passed++
		}
		if len(obs.Description) <= 5000 {
			passed++
		}
		if len(obs.EventType) >= 2 {
			passed++
		}
	}

	return round3(float64(passed) / float64(len(batch)*3))
}

// Trend summarizes the source's assessments within the trailing window.
// The second return value is false when no assessments fall in the window.
func (m *Monitor) Trend(source string, window time.Duration) (model.QualityTrend, bool) {
	cutoff := time.Now().UTC().Add(-window)

	m.mu.RLock()
	var recent []model.QualityAssessment
	for _, a := range m.history[source] {
		if !a.AssessedAt.Before(cutoff) {
			recent = append(recent, a)
		}
	}
	m.mu.RUnlock()

	if len(recent) == 0 {
		return model.QualityTrend{Source: source}, false
	}

	trend := model.QualityTrend{
		Source: source,
		Count:  len(recent),
		Min:    recent[0].OverallScore,
		Max:    recent[0].OverallScore,
	}

	var sum, dimComp, dimAcc, dimCons, dimTime, dimVal float64
	for _, a := range recent {
		sum += a.OverallScore
		trend.Min = math.Min(trend.Min, a.OverallScore)
		trend.Max = math.Max(trend.Max, a.OverallScore)
		dimComp += a.Completeness
		dimAcc += a.Accuracy
		dimCons += a.Consistency
		dimTime += a.Timeliness
		dimVal += a.Validity
	}

	n := float64(len(recent))
	trend.Average = round3(sum / n)

	var sqDiff float64
	for _, a := range recent {
		d := a.OverallScore - sum/n
		sqDiff += d * d
	}
	trend.StdDev = round3(math.Sqrt(sqDiff / n))

	trend.Dimensions = model.DimensionAverages{
		Completeness: round3(dimComp / n),
		Accuracy:     round3(dimAcc / n),
		Consistency:  round3(dimCons / n),
		Timeliness:   round3(dimTime / n),
		Validity:     round3(dimVal / n),
	}

	return trend, true
}

// SourceReliability implements scorer.ReliabilityProvider: the trailing
// average overall score for the source, if any assessments exist in the
// reliability window.
func (m *Monitor) SourceReliability(source string) (float64, bool) {
	trend, ok := m.Trend(source, reliabilityWindow)
	if !ok {
		return 0, false
	}
	return trend.Average, true
}

func invalidCoordinates(obs model.Observation) bool {
	lat, lon := obs.Latitude, obs.Longitude
	switch {
	case lat == nil && lon == nil:
		return false
	case lat == nil || lon == nil:
		return true
	default:
		return *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180
	}
}

func locationLengthStats(batch []model.Observation) (mean, variance float64) {
	n := float64(len(batch))
	for _, obs := range batch {
		mean += float64(len(obs.Location))
	}
	mean /= n

	for _, obs := range batch {
		d := float64(len(obs.Location)) - mean
		variance += d * d
	}
	variance /= n
	return mean, variance
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
