package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disruption-cli/internal/model"
)

func TestAssessImpact_Shanghai(t *testing.T) {
	s := New(nil, nil)

	obs := model.Observation{
		Source:      model.SourceEarthquake,
		EventType:   "earthquake",
		Title:       "Major earthquake",
		Description: "Severe damage reported",
		Location:    "Shanghai, China",
		Severity:    model.SeverityCritical,
	}

	got := s.AssessImpact(obs)

	// geo 1.0, duration 1.0, sector 0.2 (no sector keywords), severity 1.0:
	// 0.3 + 0.2 + 0.06 + 0.2
	assert.InDelta(t, 0.76, got.Breakdown.ImpactScore, 0.0005)
	assert.Equal(t, 1.0, got.Breakdown.Geographic)
	assert.Equal(t, 1.0, got.Breakdown.Duration)
	assert.InDelta(t, 0.2, got.Breakdown.Sector, 0.0005)
	assert.Equal(t, 1.0, got.Breakdown.Severity)

	// Shanghai sits on both the trans-Pacific and Asia-Europe lanes.
	assert.Equal(t, []string{"asia_europe", "trans_pacific"}, got.AffectedRoutes)

	assert.Equal(t, 14, got.Duration.AvgDays)
	assert.Equal(t, 0.7, got.Duration.Confidence)

	// (50 + 40) * 0.76 = 68.4 daily.
	assert.InDelta(t, 68.4, got.Financial.DailyImpactUsdMillions, 0.05)
	assert.InDelta(t, 478.8, got.Financial.WeeklyImpactUsdMillions, 0.05)
	assert.InDelta(t, 957.6, got.Financial.TotalImpactUsdMillions, 0.05)
	assert.InDelta(t, 76.0, got.Financial.AffectedTradeVolumePercent, 0.05)

	// High-impact block first, then the earthquake block.
	require.Len(t, got.MitigationStrategies, 7)
	assert.Equal(t, "Activate emergency procurement protocols", got.MitigationStrategies[0])
	assert.Equal(t, "Assess supplier facility damage", got.MitigationStrategies[4])
}

func TestAssessImpact_NoRoutes(t *testing.T) {
	s := New(nil, nil)

	obs := model.Observation{
		Source:    model.SourceNews,
		EventType: "news",
		Title:     "Local festival announced",
		Location:  "Reykjavik",
		Severity:  model.SeverityInfo,
	}

	got := s.AssessImpact(obs)

	assert.Empty(t, got.AffectedRoutes)
	assert.Equal(t, model.FinancialImpact{}, got.Financial)
}

func TestGeographicImpact(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		name     string
		location string
		want     float64
	}{
		{"empty", "", 0.3},
		{"tier1", "Port of Rotterdam", 1.0},
		{"tier2", "Hamburg, Germany", 0.8},
		{"tier3", "Savannah, Georgia", 0.6},
		{"unlisted", "Ulaanbaatar", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.geographicImpact(tt.location))
		})
	}
}

func TestDurationImpactScore(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		severity  model.Severity
		want      float64
	}{
		{"earthquake critical", "earthquake", model.SeverityCritical, 1.0},
		{"weather warning", "weather", model.SeverityWarning, 0.5},
		{"transport watch", "transport", model.SeverityWatch, 0.2},
		{"news critical", "news", model.SeverityCritical, 0.5},
		{"unknown type", "port_status", model.SeverityCritical, 0.3},
		{"known type unknown severity", "earthquake", model.SeverityInfo, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, durationImpactScore(tt.eventType, tt.severity))
		})
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		severity  model.Severity
		wantDays  int
		wantConf  float64
	}{
		{"earthquake critical", "earthquake", model.SeverityCritical, 14, 0.7},
		{"weather watch", "weather", model.SeverityWatch, 1, 0.7},
		{"transport warning", "transport", model.SeverityWarning, 3, 0.7},
		{"unknown type", "news", model.SeverityCritical, 3, 0.4},
		{"known type unknown severity", "weather", model.SeverityInfo, 3, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateDuration(tt.eventType, tt.severity)
			assert.Equal(t, tt.wantDays, got.AvgDays)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func TestSectorImpact(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no sectors", "general disturbance in the area", 0.2},
		{"one sector", "semiconductor plant affected", 0.32},
		{"two sectors", "semiconductor and textile production halted", 0.44},
		{"all five sectors", "chip vehicle garment refinery wheat", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.sectorImpact(model.Observation{Title: tt.text})
			assert.InDelta(t, tt.want, got, 0.0005)
		})
	}
}

func TestAffectedRoutes(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		name     string
		location string
		want     []string
	}{
		{"empty", "", nil},
		{"shanghai on two lanes", "Shanghai", []string{"asia_europe", "trans_pacific"}},
		{"suez on two lanes", "Suez, Egypt", []string{"asia_europe", "suez_canal"}},
		{"panama", "Panama City", []string{"panama_canal"}},
		{"inland", "Denver, Colorado", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.affectedRoutes(tt.location))
		})
	}
}

func TestFinancialImpact_ChokepointDominates(t *testing.T) {
	s := New(nil, nil)

	est := model.DurationEstimate{AvgDays: 5, Confidence: 0.7}
	got := s.financialImpact(0.5, []string{"suez_canal"}, est)

	assert.InDelta(t, 150.0, got.DailyImpactUsdMillions, 0.05)
	assert.InDelta(t, 1050.0, got.WeeklyImpactUsdMillions, 0.05)
	assert.InDelta(t, 750.0, got.TotalImpactUsdMillions, 0.05)
	assert.InDelta(t, 50.0, got.AffectedTradeVolumePercent, 0.05)
}

func TestMitigationStrategies(t *testing.T) {
	tests := []struct {
		name        string
		impactScore float64
		eventType   string
		wantLen     int
	}{
		{"low impact unknown type", 0.3, "news", 0},
		{"low impact weather", 0.3, "weather", 3},
		{"high impact unknown type", 0.8, "news", 4},
		{"high impact transport", 0.8, "transport", 7},
		{"exactly at threshold", 0.7, "earthquake", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mitigationStrategies(tt.impactScore, tt.eventType)
			assert.Len(t, got, tt.wantLen)
		})
	}
}
