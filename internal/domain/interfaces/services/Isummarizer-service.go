package Iservices

import (
	"context"
	"session-monitor/internal/domain/entities"
)

type ISummarizerService interface {
	Summarize(ctx context.Context, transcript entities.SessionTranscript) (entities.ConversationSummary, error)
}

type ISkillGeneratorService interface {
	Generate(ctx context.Context, summary *entities.ConversationSummary, workflows []entities.Workflow) (string, error)
}
