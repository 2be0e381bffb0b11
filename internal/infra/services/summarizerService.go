package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"session-monitor/internal/domain/entities"
	"session-monitor/internal/infra/logger"
)

const summaryPrompt = `You are a workflow analyst helping to understand employee daily tasks and identify opportunities for process improvement.

Analyze this conversation between an AI interviewer and an employee discussing their work responsibilities and daily tasks.

Provide a structured analysis in JSON format:

{
  "employee_profile": {
    "role_summary": "Brief description of the employee's role",
    "key_responsibilities": ["Main tasks and responsibilities discussed"],
    "tools_and_systems": ["Software, tools, or systems they mentioned using"],
    "pain_points": ["Frustrations or challenges mentioned"]
  },
  "workflow_analysis": {
    "identified_workflows": ["List of distinct workflows or processes described"],
    "repetitive_tasks": ["Tasks that appear to be done frequently/regularly"],
    "manual_processes": ["Tasks that seem highly manual or time-consuming"],
    "automation_potential": "high/medium/low"
  },
  "conversation_quality": {
    "engagement_level": "high/medium/low",
    "depth_of_responses": "detailed/moderate/brief",
    "total_exchanges": <number>
  },
  "key_insights": [
    "Insight about their work or processes",
    "Another insight"
  ],
  "suggested_actions": [
    "Recommended follow-up or improvement opportunity"
  ],
  "overall_summary": "A brief 2-3 sentence summary of the employee's role and the workflows discussed"
}

CONVERSATION:
%s

Return ONLY valid JSON. No markdown, no code blocks, just the JSON object.
`

const summarizerTimeout = 120 * time.Second

// SummarizerService produces structured conversation analyses with Gemini.
type SummarizerService struct {
	Logger *logger.Logger
	Client *genai.Client
	Model  string
}

func NewSummarizerService(ctx context.Context, logger *logger.Logger, apiKey string, model string) (*SummarizerService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info(fmt.Sprintf("Initialized summarizer with model %s", model))
	return &SummarizerService{Logger: logger, Client: client, Model: model}, nil
}

// Summarize generates a structured summary for one transcript. Transport
// failures return an error; formatting quirks in the model output never do,
// the response is lenient-parsed instead.
func (th *SummarizerService) Summarize(ctx context.Context, transcript entities.SessionTranscript) (entities.ConversationSummary, error) {
	prompt := fmt.Sprintf(summaryPrompt, transcript.ConversationText())

	ctx, cancel := context.WithTimeout(ctx, summarizerTimeout)
	defer cancel()

	response, err := th.Client.Models.GenerateContent(ctx, th.Model, genai.Text(prompt), nil)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to summarize session %s: %v", shortID(transcript.SessionID), err))
		return entities.ConversationSummary{}, fmt.Errorf("failed to generate summary: %w", err)
	}

	raw := strings.TrimSpace(response.Text())
	if raw == "" {
		return entities.ConversationSummary{}, fmt.Errorf("model returned empty response")
	}

	summary := ParseSummaryResponse(transcript.SessionID, raw)
	th.Logger.Info(fmt.Sprintf("Successfully summarized session %s", shortID(transcript.SessionID)))
	return summary, nil
}
