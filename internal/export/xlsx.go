// Package export writes alerts and quality assessments to XLSX workbooks
// for hand-off to operations teams.
package export

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/disruption-cli/internal/model"
)

var alertHeader = []string{
	"ID", "Created", "Source", "Event Type", "Title", "Location",
	"Alert Level", "Alert Score", "Priority Rank", "Should Alert",
	"Confidence", "Relevance", "Impact", "Urgency",
	"Affected Routes", "Daily Impact (USD M)", "Weekly Impact (USD M)",
	"Est. Duration (days)", "Mitigation Strategies",
}

// WriteAlerts writes the alerts to an XLSX workbook at path, one row per
// alert, ordered as given.
func WriteAlerts(path string, alerts []model.Alert) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Alerts")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range alertHeader {
		header.AddCell().Value = h
	}

	for _, alert := range alerts {
		row := sheet.AddRow()
		row.AddCell().Value = alert.ID
		row.AddCell().Value = alert.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = string(alert.Observation.Source)
		row.AddCell().Value = alert.Observation.EventType
		row.AddCell().Value = alert.Observation.Title
		row.AddCell().Value = alert.Observation.Location
		row.AddCell().Value = string(alert.AlertLevel)
		row.AddCell().SetFloat(alert.AlertScore)
		row.AddCell().SetInt(alert.PriorityRank)
		row.AddCell().SetBool(alert.ShouldAlert)
		row.AddCell().SetFloat(alert.Breakdown.Confidence)
		row.AddCell().SetFloat(alert.Breakdown.Relevance)
		row.AddCell().SetFloat(alert.Breakdown.Impact.ImpactScore)
		row.AddCell().SetFloat(alert.Breakdown.Urgency)
		row.AddCell().Value = strings.Join(alert.AffectedRoutes, ", ")
		row.AddCell().SetFloat(alert.Financial.DailyImpactUsdMillions)
		row.AddCell().SetFloat(alert.Financial.WeeklyImpactUsdMillions)
		row.AddCell().SetInt(alert.Duration.AvgDays)
		row.AddCell().Value = strings.Join(alert.MitigationStrategies, "; ")
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

var assessmentHeader = []string{
	"Source", "Assessed", "Sample Size", "Overall",
	"Completeness", "Accuracy", "Consistency", "Timeliness", "Validity",
	"Issues",
}

// WriteAssessments writes quality assessments to an XLSX workbook at path.
func WriteAssessments(path string, assessments []model.QualityAssessment) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Quality")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range assessmentHeader {
		header.AddCell().Value = h
	}

	for _, a := range assessments {
		row := sheet.AddRow()
		row.AddCell().Value = a.Source
		row.AddCell().Value = a.AssessedAt.Format(time.RFC3339)
		row.AddCell().SetInt(a.SampleSize)
		row.AddCell().SetFloat(a.OverallScore)
		row.AddCell().SetFloat(a.Completeness)
		row.AddCell().SetFloat(a.Accuracy)
		row.AddCell().SetFloat(a.Consistency)
		row.AddCell().SetFloat(a.Timeliness)
		row.AddCell().SetFloat(a.Validity)
		row.AddCell().Value = strings.Join(a.Issues, "; ")
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}
