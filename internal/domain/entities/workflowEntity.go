package entities

// Workflow is one process the participant described during the interview.
// Workflow records are written by the live browser session; the monitor only
// reads them when joining the admin view and when generating skill files.
type Workflow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	Timestamp   string   `json:"timestamp"`
}

type WorkflowRecord struct {
	SessionID string     `json:"sessionId"`
	FullName  string     `json:"fullName"`
	Workflows []Workflow `json:"workflows"`
	UpdatedAt string     `json:"updatedAt"`
}

// SkillRecord holds a generated markdown skill file for one session.
type SkillRecord struct {
	SessionID    string `json:"sessionId"`
	SkillContent string `json:"skillContent"`
	GeneratedAt  string `json:"generatedAt"`
}
