package repocontants

const (
	SESSIONS_PREFIX    = "sessions/"
	TRANSCRIPTS_PREFIX = "transcripts/"
	SUMMARIES_PREFIX   = "summaries/"
	WORKFLOWS_PREFIX   = "workflows/"
	SKILLS_PREFIX      = "skills/"

	STATE_OBJECT_KEY = "session_monitor/processed_sessions.json"
)

func SessionKey(sessionID string) string {
	return SESSIONS_PREFIX + sessionID + ".json"
}

func TranscriptKey(sessionID string) string {
	return TRANSCRIPTS_PREFIX + sessionID + ".json"
}

func SummaryKey(sessionID string) string {
	return SUMMARIES_PREFIX + sessionID + ".json"
}

func WorkflowKey(sessionID string) string {
	return WORKFLOWS_PREFIX + sessionID + ".json"
}

func SkillKey(sessionID string) string {
	return SKILLS_PREFIX + sessionID + ".json"
}
