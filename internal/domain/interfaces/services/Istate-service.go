package Iservices

import "context"

// IStateService tracks the durable set of fully-processed session IDs.
type IStateService interface {
	Load(ctx context.Context) (map[string]bool, error)
	MarkProcessed(ctx context.Context, sessionID string) error
}
