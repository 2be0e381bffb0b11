package entities

// The summary field names mirror the JSON schema the model is prompted to
// return, so a well-formed response unmarshals directly into these types.

type EmployeeProfile struct {
	RoleSummary         string   `json:"role_summary"`
	KeyResponsibilities []string `json:"key_responsibilities"`
	ToolsAndSystems     []string `json:"tools_and_systems"`
	PainPoints          []string `json:"pain_points"`
}

type WorkflowAnalysis struct {
	IdentifiedWorkflows []string `json:"identified_workflows"`
	RepetitiveTasks     []string `json:"repetitive_tasks"`
	ManualProcesses     []string `json:"manual_processes"`
	AutomationPotential string   `json:"automation_potential"`
}

type ConversationQuality struct {
	EngagementLevel  string `json:"engagement_level"`
	DepthOfResponses string `json:"depth_of_responses"`
	TotalExchanges   int    `json:"total_exchanges"`
}

// ConversationSummary is the structured analysis derived from one transcript.
// The producer is a generative model, so every field is best-effort; an
// unparseable response degrades to OverallSummary holding the raw text.
type ConversationSummary struct {
	SessionID           string              `json:"session_id"`
	EmployeeProfile     EmployeeProfile     `json:"employee_profile"`
	WorkflowAnalysis    WorkflowAnalysis    `json:"workflow_analysis"`
	ConversationQuality ConversationQuality `json:"conversation_quality"`
	KeyInsights         []string            `json:"key_insights"`
	SuggestedActions    []string            `json:"suggested_actions"`
	OverallSummary      string              `json:"overall_summary"`
	ProcessedAt         string              `json:"processed_at,omitempty"`
}
