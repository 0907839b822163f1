package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/disruption-cli/internal/export"
	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored alerts and quality assessments to XLSX",
}

var exportAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Export stored alerts, best priority first",
	Long: `Export stored alerts to an XLSX workbook, with one row per alert and
the full score breakdown, financial impact and mitigation strategies.

Examples:
  # Everything, best priority first
  export alerts --output alerts.xlsx

  # Only critical alerts from the earthquake feed
  export alerts --level critical --source earthquake --output quakes.xlsx`,
	RunE: runExportAlerts,
}

var exportQualityCmd = &cobra.Command{
	Use:   "quality <source>",
	Short: "Export stored quality assessments for a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportQuality,
}

func init() {
	f := exportAlertsCmd.Flags()
	f.String("level", "", "filter by alert level (critical, warning, watch, info)")
	f.String("source", "", "filter by observation source")
	f.Float64("min-score", 0, "minimum alert score")
	f.Int("limit", 0, "maximum rows (0=all)")
	f.Int("offset", 0, "rows to skip")
	f.String("output", "alerts.xlsx", "output workbook path")

	exportQualityCmd.Flags().Int("limit", 100, "maximum assessments to export")
	exportQualityCmd.Flags().String("output", "quality.xlsx", "output workbook path")

	exportCmd.AddCommand(exportAlertsCmd, exportQualityCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportAlerts(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "export")
	if err != nil {
		return err
	}
	defer env.Close()

	level, _ := cmd.Flags().GetString("level")
	source, _ := cmd.Flags().GetString("source")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	output, _ := cmd.Flags().GetString("output")

	alerts, err := env.Store.ListAlerts(ctx, alertFilter(level, source, minScore, limit, offset))
	if err != nil {
		return eris.Wrap(err, "export: list alerts")
	}
	if len(alerts) == 0 {
		fmt.Println("No alerts match the filter.")
		return nil
	}

	if err := export.WriteAlerts(output, alerts); err != nil {
		return err
	}
	fmt.Printf("Exported %d alerts to %s\n", len(alerts), output)
	return nil
}

// alertFilter maps the flag values onto a store filter, converting the level
// string into its typed severity.
func alertFilter(level, source string, minScore float64, limit, offset int) store.AlertFilter {
	return store.AlertFilter{
		Level:    model.Severity(level),
		Source:   source,
		MinScore: minScore,
		Limit:    limit,
		Offset:   offset,
	}
}

func runExportQuality(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "export")
	if err != nil {
		return err
	}
	defer env.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")

	assessments, err := env.Store.ListAssessments(ctx, args[0], limit)
	if err != nil {
		return eris.Wrapf(err, "export: list assessments for %s", args[0])
	}
	if len(assessments) == 0 {
		fmt.Printf("No stored assessments for %s.\n", args[0])
		return nil
	}

	if err := export.WriteAssessments(output, assessments); err != nil {
		return err
	}
	fmt.Printf("Exported %d assessments to %s\n", len(assessments), output)
	return nil
}
