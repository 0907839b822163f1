package quality

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disruption-cli/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrTime(t time.Time) *time.Time { return &t }

func cleanBatch(now time.Time) []model.Observation {
	ts := now.Add(-30 * time.Minute)
	var batch []model.Observation
	for i := 0; i < 3; i++ {
		batch = append(batch, model.Observation{
			Source:      model.SourceEarthquake,
			EventType:   "earthquake",
			Title:       fmt.Sprintf("Magnitude 6 earthquake number %d", i),
			Description: "Strong shaking reported near the coast",
			Location:    "Tokyo, Japan",
			Latitude:    ptrFloat64(35.68),
			Longitude:   ptrFloat64(139.69),
			Severity:    model.SeverityWarning,
			Timestamp:   ptrTime(ts),
		})
	}
	return batch
}

func TestAssess_CleanBatch(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	a := m.assess(cleanBatch(now), "earthquake", now)

	assert.Equal(t, 1.0, a.Completeness)
	assert.Equal(t, 0.95, a.Accuracy)
	assert.Equal(t, 1.0, a.Consistency)
	assert.Equal(t, 1.0, a.Timeliness)
	assert.Equal(t, 1.0, a.Validity)
	assert.InDelta(t, 0.99, a.OverallScore, 0.0005)
	assert.Empty(t, a.Issues)
	assert.Equal(t, 3, a.SampleSize)
}

func TestAssess_DegradedBatch(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	batch := []model.Observation{
		{
			Source:    model.SourceNews,
			EventType: "news",
			Title:     "Trade dispute escalates",
			Timestamp: ptrTime(now.Add(-48 * time.Hour)),
		},
		{
			Source:      model.SourceNews,
			EventType:   "news",
			Title:       "Hi",
			Description: "x",
			Location:    "Somewhere along the northern coast",
			Latitude:    ptrFloat64(95),
			Longitude:   ptrFloat64(10),
			Severity:    "extreme",
		},
	}

	a := m.assess(batch, "news", now)

	// 2 of 10 required fields missing.
	assert.InDelta(t, 0.8, a.Completeness, 0.0005)
	// base 0.70 minus (0.1 bad coords + 0.05 bad severity) / 2 records.
	assert.InDelta(t, 0.625, a.Accuracy, 0.0005)
	// -0.2 invalid severity, -0.1 over-dispersed location lengths.
	assert.InDelta(t, 0.7, a.Consistency, 0.0005)
	// one 48h-old record, one missing timestamp.
	assert.InDelta(t, 0.5, a.Timeliness, 0.0005)
	// 5 of 6 field checks pass (one title too short).
	assert.InDelta(t, 0.833, a.Validity, 0.0005)
	assert.InDelta(t, 0.692, a.OverallScore, 0.0005)

	require.Len(t, a.Issues, 4)
	assert.Contains(t, a.Issues[0], "completeness")
	assert.Contains(t, a.Issues[1], "accuracy")
	assert.Contains(t, a.Issues[2], "consistency")
	assert.Contains(t, a.Issues[3], "timeliness")
}

func TestAssess_EmptyBatch(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	a := m.assess(nil, "weather", now)

	assert.Equal(t, 1.0, a.Completeness)
	assert.Equal(t, 0.9, a.Accuracy)
	assert.Equal(t, 1.0, a.Consistency)
	assert.Equal(t, 0.5, a.Timeliness)
	assert.Equal(t, 1.0, a.Validity)
	assert.Equal(t, 0, a.SampleSize)
}

func TestAgeScore(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"fresh", 30 * time.Minute, 1.0},
		{"one hour", time.Hour, 1.0},
		{"three hours", 3 * time.Hour, 0.9},
		{"one day", 24 * time.Hour, 0.7},
		{"two days", 48 * time.Hour, 0.5},
		{"one week", 7 * 24 * time.Hour, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ageScore(tt.age))
		})
	}
}

func TestTrend(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	m.Assess(cleanBatch(now), "earthquake")
	m.Assess(nil, "earthquake")

	trend, ok := m.Trend("earthquake", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 2, trend.Count)
	// (0.99 + 0.89) / 2
	assert.InDelta(t, 0.94, trend.Average, 0.0005)
	assert.InDelta(t, 0.89, trend.Min, 0.0005)
	assert.InDelta(t, 0.99, trend.Max, 0.0005)
	assert.InDelta(t, 0.05, trend.StdDev, 0.0005)
	assert.InDelta(t, 1.0, trend.Dimensions.Completeness, 0.0005)
	assert.InDelta(t, 0.75, trend.Dimensions.Timeliness, 0.0005)
}

func TestTrend_NoHistory(t *testing.T) {
	m := NewMonitor(nil)

	_, ok := m.Trend("weather", time.Hour)
	assert.False(t, ok)
}

func TestSourceReliability(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	_, ok := m.SourceReliability("earthquake")
	assert.False(t, ok)

	m.Assess(cleanBatch(now), "earthquake")

	score, ok := m.SourceReliability("earthquake")
	require.True(t, ok)
	assert.InDelta(t, 0.99, score, 0.0005)
}

func TestAssess_ConcurrentSources(t *testing.T) {
	m := NewMonitor(nil)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		source := fmt.Sprintf("source-%d", i%2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Assess(cleanBatch(now), source)
		}()
	}
	wg.Wait()

	trend, ok := m.Trend("source-0", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 4, trend.Count)
}
