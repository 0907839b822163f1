package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disruption-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testAlert(level model.Severity, score float64, rank int) model.Alert {
	return model.Alert{
		ID: uuid.New().String(),
		Observation: model.Observation{
			Source:    model.SourceEarthquake,
			EventType: "earthquake",
			Title:     "Major earthquake near port",
			Location:  "Shanghai, China",
			Severity:  model.SeverityCritical,
		},
		AlertScore:     score,
		AlertLevel:     level,
		PriorityRank:   rank,
		ShouldAlert:    score >= 0.5,
		AffectedRoutes: []string{"asia_europe", "trans_pacific"},
		Financial:      model.FinancialImpact{DailyImpactUsdMillions: 68.4},
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_SaveAndGetAlert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	alert := testAlert(model.SeverityCritical, 0.86, 5)
	require.NoError(t, s.SaveAlert(ctx, alert))

	got, err := s.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, alert.AlertScore, got.AlertScore)
	assert.Equal(t, alert.AffectedRoutes, got.AffectedRoutes)
	assert.Equal(t, alert.Financial, got.Financial)
	assert.Equal(t, alert.Observation.Title, got.Observation.Title)
}

func TestSQLiteStore_GetAlert_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetAlert(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListAlerts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	critical := testAlert(model.SeverityCritical, 0.86, 3)
	warning := testAlert(model.SeverityWarning, 0.65, 25)
	watch := testAlert(model.SeverityWatch, 0.45, 50)
	for _, a := range []model.Alert{watch, critical, warning} {
		require.NoError(t, s.SaveAlert(ctx, a))
	}

	t.Run("all ordered by priority", func(t *testing.T) {
		got, err := s.ListAlerts(ctx, AlertFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, critical.ID, got[0].ID)
		assert.Equal(t, warning.ID, got[1].ID)
		assert.Equal(t, watch.ID, got[2].ID)
	})

	t.Run("filter by level", func(t *testing.T) {
		got, err := s.ListAlerts(ctx, AlertFilter{Level: model.SeverityWarning})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, warning.ID, got[0].ID)
	})

	t.Run("filter by min score", func(t *testing.T) {
		got, err := s.ListAlerts(ctx, AlertFilter{MinScore: 0.6})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := s.ListAlerts(ctx, AlertFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, warning.ID, got[0].ID)
	})

	t.Run("filter by source no match", func(t *testing.T) {
		got, err := s.ListAlerts(ctx, AlertFilter{Source: "news"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSQLiteStore_Assessments(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	older := model.QualityAssessment{
		Source:       "news",
		OverallScore: 0.7,
		Completeness: 0.8,
		SampleSize:   10,
		AssessedAt:   now.Add(-time.Hour),
	}
	newer := model.QualityAssessment{
		Source:       "news",
		OverallScore: 0.9,
		Completeness: 1.0,
		SampleSize:   12,
		AssessedAt:   now,
	}
	other := model.QualityAssessment{
		Source:       "weather",
		OverallScore: 0.95,
		SampleSize:   4,
		AssessedAt:   now,
	}
	for _, a := range []model.QualityAssessment{older, newer, other} {
		require.NoError(t, s.SaveAssessment(ctx, a))
	}

	got, err := s.ListAssessments(ctx, "news", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.9, got[0].OverallScore, "newest first")
	assert.Equal(t, 0.7, got[1].OverallScore)

	limited, err := s.ListAssessments(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
