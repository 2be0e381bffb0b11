package Iservices

import (
	"context"
	"session-monitor/internal/domain/dto"
)

type IOverviewService interface {
	ListSessions(ctx context.Context) ([]dto.SessionOverview, error)
	GetSession(ctx context.Context, sessionID string) (dto.SessionOverview, error)
}
