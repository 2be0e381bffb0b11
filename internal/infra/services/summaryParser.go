package services

import (
	"encoding/json"
	"strings"

	"session-monitor/internal/domain/entities"
)

// ParseSummaryResponse turns raw model output into a ConversationSummary. The
// model is asked for bare JSON but may wrap it in markdown fences, prose, or
// trailing commentary. This function never fails: when no JSON object can be
// recovered, the raw text becomes the overall summary and every structured
// field stays zero. Callers can rely on always receiving a usable summary.
func ParseSummaryResponse(sessionID string, raw string) entities.ConversationSummary {
	cleaned := stripCodeFences(strings.TrimSpace(raw))

	// Trim surrounding prose down to the outermost JSON object.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var summary entities.ConversationSummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return entities.ConversationSummary{
			SessionID:      sessionID,
			OverallSummary: raw,
		}
	}

	summary.SessionID = sessionID
	return summary
}

func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line (```json, ```markdown, bare ```).
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
