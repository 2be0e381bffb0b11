package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"session-monitor/internal/domain/entities"
	Irepository "session-monitor/internal/domain/interfaces/repository"
	repocontants "session-monitor/internal/domain/interfaces/repository/contants"
	"session-monitor/internal/infra/logger"
)

// ErrCorruptState indicates the persisted state blob exists but cannot be
// parsed. Treating every session as unprocessed would repeat billable
// summarization calls, so the pass fails loudly instead.
var ErrCorruptState = errors.New("corrupt monitor state")

// StateService is the durable tracker of fully-processed session IDs.
type StateService struct {
	Logger *logger.Logger
	Store  Irepository.ObjectStore
}

func NewStateService(logger *logger.Logger, store Irepository.ObjectStore) *StateService {
	return &StateService{Logger: logger, Store: store}
}

// Load reads the processed-set from the object store. A missing state object
// means first run and yields an empty set.
func (th *StateService) Load(ctx context.Context) (map[string]bool, error) {
	data, err := th.Store.Load(ctx, repocontants.STATE_OBJECT_KEY)
	if err != nil {
		if errors.Is(err, Irepository.ErrObjectNotFound) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to load monitor state: %w", err)
	}

	var state entities.MonitorState
	if err := json.Unmarshal(data, &state); err != nil {
		th.Logger.Error(fmt.Sprintf("Monitor state is unparseable: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	processed := make(map[string]bool, len(state.ProcessedSessionIDs))
	for _, id := range state.ProcessedSessionIDs {
		processed[id] = true
	}

	th.Logger.Info(fmt.Sprintf("Loaded %d processed sessions", len(processed)))
	return processed, nil
}

// MarkProcessed adds the session to the processed-set and immediately
// overwrites the state object. The set is re-read first so updates written by
// an earlier pass of the same process are never dropped. There is no
// conditional write: a second concurrent monitor instance would race on this
// read-modify-write and is unsupported.
func (th *StateService) MarkProcessed(ctx context.Context, sessionID string) error {
	processed, err := th.Load(ctx)
	if err != nil {
		return err
	}
	processed[sessionID] = true

	ids := make([]string, 0, len(processed))
	for id := range processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	state := entities.MonitorState{
		ProcessedSessionIDs: ids,
		LastUpdated:         time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal monitor state: %w", err)
	}

	if err := th.Store.Save(ctx, repocontants.STATE_OBJECT_KEY, data); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to save monitor state: %v", err))
		return fmt.Errorf("failed to save monitor state: %w", err)
	}
	return nil
}
