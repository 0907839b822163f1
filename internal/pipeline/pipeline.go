// Package pipeline wires validation, scoring, impact assessment and alert
// generation into a single pass over raw observations, with concurrent batch
// processing and priority ordering.
package pipeline

import (
	"context"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/quality"
	"github.com/sells-group/disruption-cli/internal/scorer"
	"github.com/sells-group/disruption-cli/internal/validate"
)

// DefaultConcurrency bounds batch workers when the caller passes 0.
const DefaultConcurrency = 8

// Pipeline runs observations through validation and the full scoring chain.
// Safe for concurrent use.
type Pipeline struct {
	scorer  *scorer.Scorer
	monitor *quality.Monitor
}

// New builds a pipeline around the given scoring tables. The quality monitor
// is optional; when present, batch runs feed it. blendReliability
// additionally routes the monitor's trailing reliability signal back into
// confidence scoring.
func New(tables *scorer.Tables, monitor *quality.Monitor, blendReliability bool) *Pipeline {
	var reliability scorer.ReliabilityProvider
	if monitor != nil && blendReliability {
		reliability = monitor
	}
	return &Pipeline{
		scorer:  scorer.New(tables, reliability),
		monitor: monitor,
	}
}

// Process validates and scores a single observation. The returned alert is
// nil when validation rejects the record; the validation result is always
// populated so callers can report why.
func (p *Pipeline) Process(obs model.Observation) (*model.Alert, model.ValidationResult) {
	res := validate.Validate(obs)
	if !res.IsValid {
		zap.L().Debug("pipeline: observation rejected",
			zap.String("source", string(obs.Source)),
			zap.Strings("errors", res.Errors),
		)
		return nil, res
	}

	cleaned := res.Cleaned
	confidence := p.scorer.Confidence(cleaned)
	relevance := p.scorer.Relevance(cleaned)
	impact := p.scorer.AssessImpact(cleaned)

	alert := p.scorer.BuildAlert(confidence, relevance, impact, cleaned)
	alert.Recommendation = scorer.Recommend(alert.AlertLevel, cleaned.EventType)
	alert.Warnings = res.Warnings

	return &alert, res
}

// BatchResult is the outcome of a batch run. Alerts preserves the arrival
// order of the observations that passed validation.
type BatchResult struct {
	Alerts      []model.Alert
	Rejected    []model.ValidationResult
	Assessments []model.QualityAssessment
}

// ProcessBatch validates and scores a batch concurrently. Workers are capped
// at concurrency (DefaultConcurrency when 0). Individual rejections never
// abort the batch; the only error path is context cancellation. When a
// quality monitor is wired in, each source's slice of the batch is assessed
// after scoring, so the reliability feedback lags the batch that produced it.
func (p *Pipeline) ProcessBatch(ctx context.Context, observations []model.Observation, concurrency int) (BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("observations", len(observations)),
		zap.Int("concurrency", concurrency),
	)

	// Per-index slots keep arrival order without a mutex around append.
	alerts := make([]*model.Alert, len(observations))
	results := make([]model.ValidationResult, len(observations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var rejected atomic.Int64

	for i, obs := range observations {
		i, obs := i, obs
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			alert, res := p.Process(obs)
			if alert == nil {
				rejected.Add(1)
			}
			alerts[i] = alert
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	var out BatchResult
	for i, alert := range alerts {
		if alert == nil {
			out.Rejected = append(out.Rejected, results[i])
			continue
		}
		out.Alerts = append(out.Alerts, *alert)
	}

	if p.monitor != nil {
		out.Assessments = p.assessBySource(observations)
	}

	zap.L().Info("pipeline: batch done",
		zap.Int("alerts", len(out.Alerts)),
		zap.Int64("rejected", rejected.Load()),
	)

	return out, nil
}

// assessBySource slices the raw batch by source and runs each slice through
// the quality monitor. Raw records are assessed, not cleaned ones: the
// monitor measures feed health, and cleaning would mask it.
func (p *Pipeline) assessBySource(observations []model.Observation) []model.QualityAssessment {
	groups := make(map[string][]model.Observation)
	var order []string
	for _, obs := range observations {
		src := string(obs.Source)
		if _, seen := groups[src]; !seen {
			order = append(order, src)
		}
		groups[src] = append(groups[src], obs)
	}

	assessments := make([]model.QualityAssessment, 0, len(order))
	for _, src := range order {
		assessments = append(assessments, p.monitor.Assess(groups[src], src))
	}
	return assessments
}

// SortByPriority orders alerts best-first by ascending priority rank. Equal
// ranks keep arrival order via the stable sort; there is no secondary key.
func SortByPriority(alerts []model.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PriorityRank < alerts[j].PriorityRank
	})
}
