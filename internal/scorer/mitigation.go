package scorer

import "github.com/sells-group/disruption-cli/internal/model"

// criticalImmediateActions is the fixed response playbook for critical alerts.
var criticalImmediateActions = []string{
	"Notify operations leadership and open an incident channel",
	"Freeze outbound commitments on affected routes pending reassessment",
	"Engage alternate suppliers and carriers for affected lanes",
}

// warningMonitoringActions is the fixed watch playbook for warning alerts.
var warningMonitoringActions = []string{
	"Track the event against affected routes every 6 hours",
	"Review inventory cover for exposed product lines",
	"Pre-draft customer communications in case of escalation",
}

// Recommend derives the mitigation recommendation for an alert from its
// severity and event type. Critical severity triggers the immediate playbook
// and escalation; warning triggers monitoring only; anything else is empty.
// The event type is part of the contract for forward compatibility even
// though the current playbooks are severity-driven.
func Recommend(severity model.Severity, eventType string) model.Recommendation {
	switch severity {
	case model.SeverityCritical:
		return model.Recommendation{
			ImmediateActions: criticalImmediateActions,
			EscalationNeeded: true,
		}
	case model.SeverityWarning:
		return model.Recommendation{
			MonitoringActions: warningMonitoringActions,
		}
	default:
		return model.Recommendation{}
	}
}
