package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"session-monitor/internal/domain/entities"
	"session-monitor/internal/infra/logger"
)

const skillPrompt = `You are an expert at creating agent skill files from workflow information.

Based on the following interview summary and workflows, create a comprehensive skill file in Markdown format.

The skill file should:
1. Have a clear title based on the workflow name
2. Include a description of what the skill does
3. Define clear inputs with their sources and formats
4. Define clear outputs with their destinations and formats
5. Include step-by-step instructions to follow
6. Be ready to copy-paste and use immediately

INTERVIEW SUMMARY:
%s

IDENTIFIED WORKFLOWS:
%s

Generate a complete skill file in Markdown format. Include:
- Title (# Skill: [Name])
- Description
- Inputs section (with source systems, formats, triggers)
- Outputs section (with destination systems, formats)
- Step-by-step process instructions
- Any relevant notes or considerations

Return ONLY the Markdown content, ready to be saved as a .md file.
`

const skillGeneratorTimeout = 120 * time.Second

// SkillGeneratorService turns an interview summary plus the workflows the
// participant identified into a reusable markdown skill file.
type SkillGeneratorService struct {
	Logger *logger.Logger
	Client *genai.Client
	Model  string
}

func NewSkillGeneratorService(logger *logger.Logger, client *genai.Client, model string) *SkillGeneratorService {
	return &SkillGeneratorService{Logger: logger, Client: client, Model: model}
}

func (th *SkillGeneratorService) Generate(ctx context.Context, summary *entities.ConversationSummary, workflows []entities.Workflow) (string, error) {
	if summary == nil && len(workflows) == 0 {
		return "", fmt.Errorf("no summary or workflows provided")
	}

	summaryText := "No summary available"
	if summary != nil {
		if data, err := json.MarshalIndent(summary, "", "  "); err == nil {
			summaryText = string(data)
		}
	}

	workflowsText := "No workflows identified"
	if len(workflows) > 0 {
		if data, err := json.MarshalIndent(workflows, "", "  "); err == nil {
			workflowsText = string(data)
		}
	}

	prompt := fmt.Sprintf(skillPrompt, summaryText, workflowsText)

	ctx, cancel := context.WithTimeout(ctx, skillGeneratorTimeout)
	defer cancel()

	response, err := th.Client.Models.GenerateContent(ctx, th.Model, genai.Text(prompt), nil)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to generate skill file: %v", err))
		return "", fmt.Errorf("failed to generate skill file: %w", err)
	}

	content := stripCodeFences(strings.TrimSpace(response.Text()))
	if content == "" {
		return "", fmt.Errorf("model returned empty skill content")
	}

	th.Logger.Info("Successfully generated skill file")
	return content, nil
}
