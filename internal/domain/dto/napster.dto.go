package dto

// Payloads returned by the Napster Spaces analytics endpoints.

type SessionListResponse struct {
	Success    bool     `json:"success"`
	SessionIDs []string `json:"sessionIds"`
}

// TranscriptEntryPayload is the raw wire shape of a transcript turn. The API
// is not consistent about field names across experience versions: the turn
// text may arrive as "text" or "content", and the ordering marker as
// "timestamp" or "sequence". Normalization happens in the provider.
type TranscriptEntryPayload struct {
	Text      string `json:"text"`
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
	Sequence  int64  `json:"sequence"`
}

type TranscriptResponse struct {
	Success    bool                     `json:"success"`
	Transcript []TranscriptEntryPayload `json:"transcript"`
}
