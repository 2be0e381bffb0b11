package entities

// Session identifies one interview instance. The record is written by the
// browser when a remote session starts and is never mutated by the monitor.
type Session struct {
	SessionID string `json:"sessionId" bson:"session_id"`
	FullName  string `json:"fullName" bson:"full_name"`
	Timestamp string `json:"timestamp" bson:"timestamp"`
	CreatedAt string `json:"createdAt" bson:"created_at"`
}

type MonitorState struct {
	ProcessedSessionIDs []string `json:"processedSessionIds"`
	LastUpdated         string   `json:"lastUpdated,omitempty"`
}
