package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"session-monitor/internal/domain/dto"
	"session-monitor/internal/domain/entities"
	Irepository "session-monitor/internal/domain/interfaces/repository"
	repocontants "session-monitor/internal/domain/interfaces/repository/contants"
	"session-monitor/internal/infra/logger"
)

// ErrSessionNotFound is returned by GetSession for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// OverviewService builds the read-side join consumed by the admin surface.
// It performs no writes: artifacts are attached only when the blob exists and
// parses, so partially-written data is never surfaced.
type OverviewService struct {
	Logger *logger.Logger
	Store  Irepository.ObjectStore
}

func NewOverviewService(logger *logger.Logger, store Irepository.ObjectStore) *OverviewService {
	return &OverviewService{Logger: logger, Store: store}
}

// ListSessions joins every session record with its summary, transcript,
// workflows and skill file, sorted by session timestamp descending.
func (th *OverviewService) ListSessions(ctx context.Context) ([]dto.SessionOverview, error) {
	keys, err := th.Store.List(ctx, repocontants.SESSIONS_PREFIX)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	overviews := make([]dto.SessionOverview, 0, len(keys))
	for _, key := range keys {
		data, err := th.Store.Load(ctx, key)
		if err != nil {
			th.Logger.Warn(fmt.Sprintf("Failed to load session record %s: %v", key, err))
			continue
		}

		var session entities.Session
		if err := json.Unmarshal(data, &session); err != nil {
			th.Logger.Warn(fmt.Sprintf("Unparseable session record %s: %v", key, err))
			continue
		}
		if session.SessionID == "" {
			session.SessionID = sessionIDFromKey(key)
		}

		overviews = append(overviews, th.buildOverview(ctx, session))
	}

	sort.Slice(overviews, func(i, j int) bool {
		return overviews[i].Timestamp > overviews[j].Timestamp
	})
	return overviews, nil
}

// GetSession joins the artifacts for a single session ID.
func (th *OverviewService) GetSession(ctx context.Context, sessionID string) (dto.SessionOverview, error) {
	data, err := th.Store.Load(ctx, repocontants.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, Irepository.ErrObjectNotFound) {
			return dto.SessionOverview{}, ErrSessionNotFound
		}
		return dto.SessionOverview{}, fmt.Errorf("failed to load session record: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return dto.SessionOverview{}, fmt.Errorf("unparseable session record: %w", err)
	}
	if session.SessionID == "" {
		session.SessionID = sessionID
	}

	return th.buildOverview(ctx, session), nil
}

func (th *OverviewService) buildOverview(ctx context.Context, session entities.Session) dto.SessionOverview {
	overview := dto.SessionOverview{
		Session: session,
		Status:  dto.SessionStatusPending,
	}

	var summary entities.ConversationSummary
	if th.loadJSON(ctx, repocontants.SummaryKey(session.SessionID), &summary) {
		overview.Summary = &summary
		overview.Status = dto.SessionStatusProcessed
	}

	var transcript entities.StoredTranscript
	if th.loadJSON(ctx, repocontants.TranscriptKey(session.SessionID), &transcript) {
		overview.Transcript = &transcript
	}

	var workflows entities.WorkflowRecord
	if th.loadJSON(ctx, repocontants.WorkflowKey(session.SessionID), &workflows) {
		overview.Workflows = workflows.Workflows
	}

	var skill entities.SkillRecord
	if th.loadJSON(ctx, repocontants.SkillKey(session.SessionID), &skill) {
		overview.Skill = &skill
	}

	return overview
}

// loadJSON reports whether the object exists and parsed into out. Missing
// objects are expected (the session is still pending); anything else is
// logged and the artifact is simply omitted from the view.
func (th *OverviewService) loadJSON(ctx context.Context, key string, out any) bool {
	data, err := th.Store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, Irepository.ErrObjectNotFound) {
			th.Logger.Warn(fmt.Sprintf("Failed to load %s: %v", key, err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		th.Logger.Warn(fmt.Sprintf("Unparseable object %s: %v", key, err))
		return false
	}
	return true
}

func sessionIDFromKey(key string) string {
	id := strings.TrimPrefix(key, repocontants.SESSIONS_PREFIX)
	return strings.TrimSuffix(id, ".json")
}
