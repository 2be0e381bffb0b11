package dto

import "session-monitor/internal/domain/entities"

const (
	SessionStatusProcessed = "processed"
	SessionStatusPending   = "pending"
)

// SessionOverview is the joined read-side view of one session for the admin
// surface. Summary, transcript, workflows and skill are attached only when
// the corresponding blob exists and parses; absence means "pending".
type SessionOverview struct {
	entities.Session
	Status     string                        `json:"status"`
	Summary    *entities.ConversationSummary `json:"summary,omitempty"`
	Transcript *entities.StoredTranscript    `json:"transcript,omitempty"`
	Workflows  []entities.Workflow           `json:"workflows,omitempty"`
	Skill      *entities.SkillRecord         `json:"skill,omitempty"`
}
