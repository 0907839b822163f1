package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/disruption-cli/internal/model"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name           string
		severity       model.Severity
		wantImmediate  int
		wantMonitoring int
		wantEscalation bool
	}{
		{"critical", model.SeverityCritical, 3, 0, true},
		{"warning", model.SeverityWarning, 0, 3, false},
		{"watch", model.SeverityWatch, 0, 0, false},
		{"info", model.SeverityInfo, 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.severity, "weather")
			assert.Len(t, got.ImmediateActions, tt.wantImmediate)
			assert.Len(t, got.MonitoringActions, tt.wantMonitoring)
			assert.Equal(t, tt.wantEscalation, got.EscalationNeeded)
		})
	}
}

func TestRecommend_CriticalPlaybookContent(t *testing.T) {
	got := Recommend(model.SeverityCritical, "earthquake")

	assert.Contains(t, got.ImmediateActions[0], "incident channel")
	assert.True(t, got.EscalationNeeded)
	assert.Empty(t, got.MonitoringActions)
}
