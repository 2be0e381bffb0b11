package Iservices

import (
	"context"
	"session-monitor/internal/domain/dto"
	"time"
)

type IMonitorService interface {
	RunOnce(ctx context.Context) (dto.RunReport, error)
	RunForever(ctx context.Context, interval time.Duration)
}
