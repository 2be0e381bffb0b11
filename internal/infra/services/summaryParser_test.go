package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-monitor/internal/infra/services"
)

const wellFormedSummary = `{
  "employee_profile": {
    "role_summary": "Accounts payable clerk",
    "key_responsibilities": ["Invoice processing"],
    "tools_and_systems": ["SAP", "Excel"],
    "pain_points": ["Manual data entry"]
  },
  "workflow_analysis": {
    "identified_workflows": ["Invoice approval"],
    "repetitive_tasks": ["Copying invoice totals"],
    "manual_processes": ["Email follow-ups"],
    "automation_potential": "high"
  },
  "conversation_quality": {
    "engagement_level": "high",
    "depth_of_responses": "detailed",
    "total_exchanges": 12
  },
  "key_insights": ["Most time is spent reconciling invoices"],
  "suggested_actions": ["Automate invoice matching"],
  "overall_summary": "The employee processes invoices manually in SAP."
}`

func TestParseSummaryResponseWellFormed(t *testing.T) {
	summary := services.ParseSummaryResponse("sess-1", wellFormedSummary)

	assert.Equal(t, "sess-1", summary.SessionID)
	assert.Equal(t, "Accounts payable clerk", summary.EmployeeProfile.RoleSummary)
	assert.Equal(t, "high", summary.WorkflowAnalysis.AutomationPotential)
	assert.Equal(t, 12, summary.ConversationQuality.TotalExchanges)
	assert.Equal(t, "The employee processes invoices manually in SAP.", summary.OverallSummary)
}

func TestParseSummaryResponseCodeFences(t *testing.T) {
	raw := "```json\n" + wellFormedSummary + "\n```"
	summary := services.ParseSummaryResponse("sess-1", raw)

	require.Equal(t, "high", summary.WorkflowAnalysis.AutomationPotential)
	assert.NotEmpty(t, summary.OverallSummary)
}

func TestParseSummaryResponseSurroundingProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n" + wellFormedSummary + "\nLet me know if you need anything else."
	summary := services.ParseSummaryResponse("sess-1", raw)

	assert.Equal(t, "Accounts payable clerk", summary.EmployeeProfile.RoleSummary)
	assert.Equal(t, []string{"Automate invoice matching"}, summary.SuggestedActions)
}

func TestParseSummaryResponseUnparseable(t *testing.T) {
	raw := "I could not produce JSON this time, but the employee seems to work in finance."
	summary := services.ParseSummaryResponse("sess-1", raw)

	assert.Equal(t, "sess-1", summary.SessionID)
	assert.Equal(t, raw, summary.OverallSummary)
	assert.Empty(t, summary.KeyInsights)
	assert.Empty(t, summary.EmployeeProfile.RoleSummary)
}

func TestParseSummaryResponseTruncatedJSON(t *testing.T) {
	raw := `{"overall_summary": "cut off mid stre`
	summary := services.ParseSummaryResponse("sess-1", raw)

	assert.Equal(t, raw, summary.OverallSummary)
}
