package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/disruption-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS alerts (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	alert_level   TEXT NOT NULL,
	alert_score   REAL NOT NULL,
	priority_rank INTEGER NOT NULL,
	should_alert  INTEGER NOT NULL,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS quality_assessments (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	overall_score REAL NOT NULL,
	sample_size   INTEGER NOT NULL,
	payload       TEXT NOT NULL,
	assessed_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_level ON alerts(alert_level);
CREATE INDEX IF NOT EXISTS idx_alerts_source ON alerts(source);
CREATE INDEX IF NOT EXISTS idx_alerts_score ON alerts(alert_score);
CREATE INDEX IF NOT EXISTS idx_assessments_source ON quality_assessments(source);
CREATE INDEX IF NOT EXISTS idx_assessments_time ON quality_assessments(assessed_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal alert")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, source, event_type, alert_level, alert_score, priority_rank, should_alert, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, string(alert.Observation.Source), alert.Observation.EventType,
		string(alert.AlertLevel), alert.AlertScore, alert.PriorityRank,
		alert.ShouldAlert, string(payload), alert.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert alert %s", alert.ID)
}

func (s *SQLiteStore) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM alerts WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get alert %s", id)
	}

	var alert model.Alert
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal alert %s", id)
	}
	return &alert, nil
}

func (s *SQLiteStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := `SELECT payload FROM alerts`
	var conds []string
	var args []any

	if filter.Level != "" {
		conds = append(conds, "alert_level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.MinScore > 0 {
		conds = append(conds, "alert_score >= ?")
		args = append(args, filter.MinScore)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY priority_rank ASC, alert_score DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list alerts")
	}
	defer rows.Close() //nolint:errcheck

	var alerts []model.Alert
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alert")
		}
		var alert model.Alert
		if err := json.Unmarshal([]byte(payload), &alert); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal alert")
		}
		alerts = append(alerts, alert)
	}
	return alerts, eris.Wrap(rows.Err(), "sqlite: iterate alerts")
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, assessment model.QualityAssessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal assessment")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quality_assessments (id, source, overall_score, sample_size, payload, assessed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), assessment.Source, assessment.OverallScore,
		assessment.SampleSize, string(payload), assessment.AssessedAt,
	)
	return eris.Wrapf(err, "sqlite: insert assessment for %s", assessment.Source)
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, source string, limit int) ([]model.QualityAssessment, error) {
	query := `SELECT payload FROM quality_assessments`
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	query += " ORDER BY assessed_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close() //nolint:errcheck

	var assessments []model.QualityAssessment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment")
		}
		var a model.QualityAssessment
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal assessment")
		}
		assessments = append(assessments, a)
	}
	return assessments, eris.Wrap(rows.Err(), "sqlite: iterate assessments")
}
