package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"session-monitor/internal/domain/dto"
	"session-monitor/internal/domain/entities"
	"session-monitor/internal/infra/logger"
)

// ErrTranscriptUnavailable indicates the remote source has no transcript for
// the session yet. The session stays unprocessed and is retried next pass.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

type NapsterSpacesProvider struct {
	Logger       *logger.Logger
	HttpClient   *http.Client
	BaseURL      string
	ExperienceID string
	ApiKey       string
}

func NewNapsterSpacesProvider(logger *logger.Logger, httpClient *http.Client, baseURL, experienceID, apiKey string) *NapsterSpacesProvider {
	return &NapsterSpacesProvider{
		Logger:       logger,
		HttpClient:   httpClient,
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		ExperienceID: experienceID,
		ApiKey:       apiKey,
	}
}

// GetSessionIDs retrieves every session ID known to the experience.
//
// Returns:
//   - []string: The session identifiers reported by the analytics endpoint.
//   - error: Returns an error if the HTTP request fails or the API reports an
//     unsuccessful response.
func (th *NapsterSpacesProvider) GetSessionIDs(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/%s/analytics/sessions", th.BaseURL, th.ExperienceID)

	body, err := th.doGet(ctx, url)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to get sessions: %v", err))
		return nil, err
	}

	var response dto.SessionListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal session list: %v", err))
		return nil, fmt.Errorf("failed to unmarshal session list: %w", err)
	}

	if !response.Success {
		th.Logger.Error("Session list API returned unsuccessful response")
		return nil, fmt.Errorf("session list API returned unsuccessful response")
	}

	th.Logger.Info(fmt.Sprintf("Retrieved %d sessions", len(response.SessionIDs)))
	return response.SessionIDs, nil
}

// GetTranscript retrieves and normalizes the transcript for one session.
//
// Returns:
//   - entities.SessionTranscript: The canonical transcript with every wire
//     variant (text/content, agent/assistant) already normalized.
//   - error: ErrTranscriptUnavailable when the remote has no transcript or an
//     empty one; any other error indicates a transport failure.
func (th *NapsterSpacesProvider) GetTranscript(ctx context.Context, sessionID string) (entities.SessionTranscript, error) {
	url := fmt.Sprintf("%s/%s/analytics/transcripts/%s", th.BaseURL, th.ExperienceID, sessionID)

	body, err := th.doGet(ctx, url)
	if err != nil {
		if errors.Is(err, errNotFound) {
			th.Logger.Warn(fmt.Sprintf("No transcript available for session %s", shortID(sessionID)))
			return entities.SessionTranscript{}, ErrTranscriptUnavailable
		}
		th.Logger.Error(fmt.Sprintf("Failed to get transcript for %s: %v", shortID(sessionID), err))
		return entities.SessionTranscript{}, err
	}

	var response dto.TranscriptResponse
	if err := json.Unmarshal(body, &response); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal transcript for %s: %v", shortID(sessionID), err))
		return entities.SessionTranscript{}, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	if !response.Success || len(response.Transcript) == 0 {
		th.Logger.Warn(fmt.Sprintf("No transcript available for session %s", shortID(sessionID)))
		return entities.SessionTranscript{}, ErrTranscriptUnavailable
	}

	transcript := entities.SessionTranscript{
		SessionID: sessionID,
		Entries:   make([]entities.TranscriptEntry, 0, len(response.Transcript)),
	}
	for _, payload := range response.Transcript {
		transcript.Entries = append(transcript.Entries, normalizeEntry(payload))
	}

	th.Logger.Info(fmt.Sprintf("Retrieved transcript for session %s (%d entries)", shortID(sessionID), len(transcript.Entries)))
	return transcript, nil
}

var errNotFound = errors.New("remote returned not found")

func (th *NapsterSpacesProvider) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("X-API-Key", th.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := th.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("unexpected HTTP status: %s, response: %s", res.Status, string(body))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// normalizeEntry maps one raw wire entry into the canonical transcript shape.
// Text may arrive under "text" or "content"; roles collapse to user/agent,
// with "assistant" treated as agent and anything else lowercased as-is.
func normalizeEntry(payload dto.TranscriptEntryPayload) entities.TranscriptEntry {
	text := payload.Text
	if text == "" {
		text = payload.Content
	}

	role := strings.ToLower(strings.TrimSpace(payload.Role))
	if role == "assistant" {
		role = entities.RoleAgent
	}

	timestamp := payload.Timestamp
	if timestamp == 0 {
		timestamp = payload.Sequence
	}

	return entities.TranscriptEntry{
		Text:      text,
		Role:      role,
		Timestamp: timestamp,
	}
}

func shortID(sessionID string) string {
	if len(sessionID) > 20 {
		return sessionID[:20] + "..."
	}
	return sessionID
}
