package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a batch of observations into prioritized alerts",
	Long: `Read a JSON array of observations, run each through validation and the
full scoring chain (confidence, relevance, impact, urgency), and emit the
resulting alerts ordered by priority.

Examples:
  # Score a file and print alerts to stdout
  score --input observations.json

  # Score from stdin, keep only strong alerts, persist them
  cat observations.json | score --input - --min-score 0.6 --save

  # Write alerts and per-source quality assessments to files
  score --input observations.json --output alerts.json`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "-", "observations JSON file (- for stdin)")
	f.String("output", "", "output file path (default: stdout)")
	f.Float64("min-score", 0, "drop alerts below this alert score")
	f.Int("concurrency", 0, "batch workers (0=use config default)")
	f.Bool("save", false, "persist alerts and quality assessments to the store")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "score")
	if err != nil {
		return err
	}
	defer env.Close()

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	save, _ := cmd.Flags().GetBool("save")

	if concurrency == 0 {
		concurrency = cfg.Batch.Concurrency
	}

	observations, err := readObservations(input)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Println("No observations to score.")
		return nil
	}

	result, err := env.Pipeline.ProcessBatch(ctx, observations, concurrency)
	if err != nil {
		return eris.Wrap(err, "score: process batch")
	}

	pipeline.SortByPriority(result.Alerts)

	alerts := result.Alerts
	if minScore > 0 {
		kept := alerts[:0]
		for _, a := range alerts {
			if a.AlertScore >= minScore {
				kept = append(kept, a)
			}
		}
		alerts = kept
	}

	if save {
		if err := persistBatch(ctx, env, alerts, result.Assessments); err != nil {
			return err
		}
	}

	out := struct {
		Alerts      []model.Alert             `json:"alerts"`
		Rejected    []model.ValidationResult  `json:"rejected,omitempty"`
		Assessments []model.QualityAssessment `json:"assessments,omitempty"`
	}{alerts, result.Rejected, result.Assessments}

	if err := writeJSON(output, out); err != nil {
		return err
	}

	printBatchSummary(alerts, len(result.Rejected))
	return nil
}

func persistBatch(ctx context.Context, env *env, alerts []model.Alert, assessments []model.QualityAssessment) error {
	for _, alert := range alerts {
		if err := env.Store.SaveAlert(ctx, alert); err != nil {
			return eris.Wrapf(err, "score: save alert %s", alert.ID)
		}
	}
	for _, a := range assessments {
		if err := env.Store.SaveAssessment(ctx, a); err != nil {
			return eris.Wrapf(err, "score: save assessment for %s", a.Source)
		}
	}
	zap.L().Info("batch persisted",
		zap.Int("alerts", len(alerts)),
		zap.Int("assessments", len(assessments)),
	)
	return nil
}

func printBatchSummary(alerts []model.Alert, rejected int) {
	var firing, escalations int
	byLevel := map[model.Severity]int{}
	for _, a := range alerts {
		byLevel[a.AlertLevel]++
		if a.ShouldAlert {
			firing++
		}
		if a.EscalationNeeded {
			escalations++
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Alerts:      %d (%d firing, %d need escalation)\n", len(alerts), firing, escalations)
	fmt.Printf("Rejected:    %d\n", rejected)
	for _, level := range []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityWatch, model.SeverityInfo} {
		if n := byLevel[level]; n > 0 {
			fmt.Printf("  %-9s %d\n", level+":", n)
		}
	}
}
