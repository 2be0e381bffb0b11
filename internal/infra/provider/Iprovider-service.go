package provider

import (
	"context"
	"session-monitor/internal/domain/entities"
)

type ISessionSourceProvider interface {
	GetSessionIDs(ctx context.Context) ([]string, error)
	GetTranscript(ctx context.Context, sessionID string) (entities.SessionTranscript, error)
}
