package entities

import "strings"

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// TranscriptEntry is the canonical shape of a single conversation turn.
// Remote payload variants (text vs content, assistant vs agent) are mapped
// into this shape at the provider boundary before anything else sees them.
type TranscriptEntry struct {
	Text      string `json:"text"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// SessionTranscript is the full ordered transcript for one session.
type SessionTranscript struct {
	SessionID string            `json:"sessionId"`
	Entries   []TranscriptEntry `json:"entries"`
}

// ConversationText renders the transcript as readable speaker-prefixed lines
// for the summarization prompt.
func (st SessionTranscript) ConversationText() string {
	lines := make([]string, 0, len(st.Entries))
	for _, entry := range st.Entries {
		speaker := "User"
		if entry.Role == RoleAgent {
			speaker = "AI Assistant"
		}
		lines = append(lines, speaker+": "+entry.Text)
	}
	return strings.Join(lines, "\n")
}

// HasMeaningfulContent reports whether the transcript is worth summarizing.
// A transcript needs at least one user turn and at least two turns overall.
func (st SessionTranscript) HasMeaningfulContent() bool {
	userEntries := 0
	for _, entry := range st.Entries {
		if entry.Role == RoleUser {
			userEntries++
		}
	}
	return userEntries >= 1 && len(st.Entries) >= 2
}

// FirstTimestamp returns the timestamp of the first entry in milliseconds,
// or zero when the transcript is empty.
func (st SessionTranscript) FirstTimestamp() int64 {
	if len(st.Entries) > 0 {
		return st.Entries[0].Timestamp
	}
	return 0
}

// StoredTranscript is the persisted form of a transcript.
type StoredTranscript struct {
	SessionID   string            `json:"sessionId"`
	Entries     []TranscriptEntry `json:"entries"`
	ProcessedAt string            `json:"processedAt"`
}
