package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS alerts (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	alert_level   TEXT NOT NULL,
	alert_score   DOUBLE PRECISION NOT NULL,
	priority_rank INTEGER NOT NULL,
	should_alert  BOOLEAN NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quality_assessments (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	sample_size   INTEGER NOT NULL,
	payload       JSONB NOT NULL,
	assessed_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_level ON alerts(alert_level);
CREATE INDEX IF NOT EXISTS idx_alerts_source ON alerts(source);
CREATE INDEX IF NOT EXISTS idx_alerts_score ON alerts(alert_score);
CREATE INDEX IF NOT EXISTS idx_assessments_source ON quality_assessments(source);
CREATE INDEX IF NOT EXISTS idx_assessments_time ON quality_assessments(assessed_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal alert")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO alerts (id, source, event_type, alert_level, alert_score, priority_rank, should_alert, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, string(alert.Observation.Source), alert.Observation.EventType,
		string(alert.AlertLevel), alert.AlertScore, alert.PriorityRank,
		alert.ShouldAlert, payload, alert.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert alert %s", alert.ID)
}

func (s *PostgresStore) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM alerts WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get alert %s", id)
	}

	var alert model.Alert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal alert %s", id)
	}
	return &alert, nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := `SELECT payload FROM alerts`
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Level != "" {
		conds = append(conds, "alert_level = "+arg(string(filter.Level)))
	}
	if filter.Source != "" {
		conds = append(conds, "source = "+arg(filter.Source))
	}
	if filter.MinScore > 0 {
		conds = append(conds, "alert_score >= "+arg(filter.MinScore))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY priority_rank ASC, alert_score DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET " + arg(filter.Offset)
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list alerts")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alert")
		}
		var alert model.Alert
		if err := json.Unmarshal(payload, &alert); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal alert")
		}
		alerts = append(alerts, alert)
	}
	return alerts, eris.Wrap(rows.Err(), "postgres: iterate alerts")
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, assessment model.QualityAssessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal assessment")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO quality_assessments (id, source, overall_score, sample_size, payload, assessed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), assessment.Source, assessment.OverallScore,
		assessment.SampleSize, payload, assessment.AssessedAt,
	)
	return eris.Wrapf(err, "postgres: insert assessment for %s", assessment.Source)
}

func (s *PostgresStore) ListAssessments(ctx context.Context, source string, limit int) ([]model.QualityAssessment, error) {
	query := `SELECT payload FROM quality_assessments`
	var args []any
	if source != "" {
		args = append(args, source)
		query += " WHERE source = $1"
	}
	query += " ORDER BY assessed_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var assessments []model.QualityAssessment
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		var a model.QualityAssessment
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal assessment")
		}
		assessments = append(assessments, a)
	}
	return assessments, eris.Wrap(rows.Err(), "postgres: iterate assessments")
}
