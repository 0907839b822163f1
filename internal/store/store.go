// Package store persists alerts and quality assessments. Two backends are
// provided: SQLite for single-node CLI use and Postgres for shared
// deployments. Both store the full document as JSON next to the columns the
// list queries filter on.
package store

import (
	"context"

	"github.com/sells-group/disruption-cli/internal/model"
)

// AlertFilter specifies criteria for listing alerts.
type AlertFilter struct {
	Level    model.Severity `json:"level,omitempty"`
	Source   string         `json:"source,omitempty"`
	MinScore float64        `json:"min_score,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for the disruption pipeline.
type Store interface {
	// Alerts
	SaveAlert(ctx context.Context, alert model.Alert) error
	GetAlert(ctx context.Context, id string) (*model.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error)

	// Quality assessments
	SaveAssessment(ctx context.Context, assessment model.QualityAssessment) error
	ListAssessments(ctx context.Context, source string, limit int) ([]model.QualityAssessment, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
