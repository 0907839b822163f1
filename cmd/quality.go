package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/disruption-cli/internal/model"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Assess and inspect feed data quality",
}

var qualityAssessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a batch of raw observations per source",
	Long: `Group a JSON array of observations by source and score each group on
completeness, accuracy, consistency, timeliness and validity.

Examples:
  # Assess a captured batch
  quality assess --input observations.json

  # Assess and keep the assessments for trend queries
  quality assess --input observations.json --save`,
	RunE: runQualityAssess,
}

var qualityListCmd = &cobra.Command{
	Use:   "list <source>",
	Short: "List stored assessments for a source, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runQualityList,
}

func init() {
	f := qualityAssessCmd.Flags()
	f.String("input", "-", "observations JSON file (- for stdin)")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "persist assessments to the store")

	qualityListCmd.Flags().Int("limit", 20, "maximum assessments to return")

	qualityCmd.AddCommand(qualityAssessCmd, qualityListCmd)
	rootCmd.AddCommand(qualityCmd)
}

func runQualityAssess(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "score")
	if err != nil {
		return err
	}
	defer env.Close()

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	observations, err := readObservations(input)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Println("No observations to assess.")
		return nil
	}

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
		a := env.Monitor.Assess(groups[src], src)
		assessments = append(assessments, a)
		if save {
			if err := env.Store.SaveAssessment(ctx, a); err != nil {
				return eris.Wrapf(err, "quality: save assessment for %s", src)
			}
		}
	}

	if err := writeJSON(output, assessments); err != nil {
		return err
	}

	printAssessmentSummary(assessments)
	return nil
}

func runQualityList(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "score")
	if err != nil {
		return err
	}
	defer env.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	assessments, err := env.Store.ListAssessments(ctx, args[0], limit)
	if err != nil {
		return eris.Wrapf(err, "quality: list assessments for %s", args[0])
	}
	if len(assessments) == 0 {
		fmt.Printf("No stored assessments for %s.\n", args[0])
		return nil
	}
	return writeJSON("", assessments)
}

func printAssessmentSummary(assessments []model.QualityAssessment) {
	fmt.Printf("\n--- Quality ---\n")
	for _, a := range assessments {
		fmt.Printf("%-12s overall %.3f  (n=%d, %d issues)\n",
			a.Source, a.OverallScore, a.SampleSize, len(a.Issues))
		for _, issue := range a.Issues {
			fmt.Printf("  ! %s\n", issue)
		}
	}
}
