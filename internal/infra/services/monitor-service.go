package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"session-monitor/internal/domain/dto"
	"session-monitor/internal/domain/entities"
	Irepository "session-monitor/internal/domain/interfaces/repository"
	repocontants "session-monitor/internal/domain/interfaces/repository/contants"
	Iservices "session-monitor/internal/domain/interfaces/services"
	"session-monitor/internal/infra/logger"
	"session-monitor/internal/infra/provider"
)

// ErrPassInProgress is returned when RunOnce is invoked while another pass is
// still running. Ticks and manual triggers are skipped, never queued.
var ErrPassInProgress = errors.New("a reconciliation pass is already in progress")

// errInsufficientContent marks transcripts below the meaningful-content
// threshold. The session is skipped before any blob is written and stays
// eligible for retry on the next pass.
var errInsufficientContent = errors.New("transcript has insufficient content")

// MonitorService drives the discover-and-enrich pass over remote sessions.
type MonitorService struct {
	Logger         *logger.Logger
	Source         provider.ISessionSourceProvider
	Store          Irepository.ObjectStore
	StateService   Iservices.IStateService
	Summarizer     Iservices.ISummarizerService
	SkillGenerator Iservices.ISkillGeneratorService

	mu sync.Mutex
}

func NewMonitorService(
	logger *logger.Logger,
	source provider.ISessionSourceProvider,
	store Irepository.ObjectStore,
	stateService Iservices.IStateService,
	summarizer Iservices.ISummarizerService,
	skillGenerator Iservices.ISkillGeneratorService,
) *MonitorService {
	return &MonitorService{
		Logger:         logger,
		Source:         source,
		Store:          store,
		StateService:   stateService,
		Summarizer:     summarizer,
		SkillGenerator: skillGenerator,
	}
}

// RunOnce performs exactly one discovery and enrichment pass.
//
// The processed-set is re-read from the store at the start of every pass, the
// remote session list is diffed against it, and each unprocessed session is
// enriched in arrival order. A session is marked processed immediately after
// its transcript and summary are both persisted, so a crash mid-pass loses at
// most the in-flight session. Per-session failures are counted in the report
// and never abort the pass; only setup problems (corrupt state, unreachable
// session source) surface as an error.
func (th *MonitorService) RunOnce(ctx context.Context) (dto.RunReport, error) {
	if !th.mu.TryLock() {
		return dto.RunReport{}, ErrPassInProgress
	}
	defer th.mu.Unlock()

	report := dto.RunReport{RunID: uuid.NewString()}
	th.Logger.Info("Checking for new sessions...", logrus.Fields{"run_id": report.RunID})

	processed, err := th.StateService.Load(ctx)
	if err != nil {
		return report, err
	}

	sessionIDs, err := th.Source.GetSessionIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list remote sessions: %w", err)
	}

	var newSessions []string
	for _, id := range sessionIDs {
		if !processed[id] {
			newSessions = append(newSessions, id)
		}
	}
	report.Discovered = len(newSessions)

	if len(newSessions) == 0 {
		th.Logger.Info(fmt.Sprintf("No new sessions to process (total: %d, processed: %d)", len(sessionIDs), len(processed)))
		return report, nil
	}

	th.Logger.Info(fmt.Sprintf("Found %d new session(s) to process", len(newSessions)))

	for _, sessionID := range newSessions {
		// Cancellation takes effect between sessions, never mid-enrichment.
		if ctx.Err() != nil {
			th.Logger.Warn("Pass interrupted by shutdown, stopping before next session")
			break
		}

		err := th.enrichSession(ctx, sessionID)
		switch {
		case errors.Is(err, provider.ErrTranscriptUnavailable), errors.Is(err, errInsufficientContent):
			th.Logger.Warn(fmt.Sprintf("Skipping session %s: %v", shortID(sessionID), err))
			report.Skipped++
		case err != nil:
			th.Logger.Error(fmt.Sprintf("Error processing session %s: %v", shortID(sessionID), err))
			report.Failed++
		default:
			if err := th.StateService.MarkProcessed(ctx, sessionID); err != nil {
				th.Logger.Error(fmt.Sprintf("Failed to mark session %s as processed: %v", shortID(sessionID), err))
				report.Failed++
				continue
			}
			report.Processed++
			th.Logger.Info(fmt.Sprintf("Successfully processed session %s", shortID(sessionID)))
		}
	}

	th.Logger.Info(fmt.Sprintf("Completed processing %d session(s)", report.Processed), logrus.Fields{
		"run_id":     report.RunID,
		"discovered": report.Discovered,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
	})
	return report, nil
}

// RunForever repeats RunOnce on a fixed interval until the context is
// cancelled. The first pass starts immediately. Ticks that fire while a pass
// is still running are dropped by the in-progress guard.
func (th *MonitorService) RunForever(ctx context.Context, interval time.Duration) {
	th.Logger.Info(fmt.Sprintf("Starting daemon mode (checking every %s)", interval))

	th.runPass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			th.Logger.Info("Shutting down monitor loop...")
			return
		case <-ticker.C:
			th.runPass(ctx)
		}
	}
}

func (th *MonitorService) runPass(ctx context.Context) {
	if _, err := th.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrPassInProgress) {
			th.Logger.Warn("Previous pass still running, skipping this tick")
			return
		}
		th.Logger.Error(fmt.Sprintf("Error in monitor pass: %v", err))
	}
}

// enrichSession produces and persists the transcript and summary for one
// session, or fails cleanly leaving the session unprocessed. The transcript
// is persisted before summarization is attempted; a transcript without a
// summary is safe because the session is only marked processed by the caller
// after both writes succeed.
func (th *MonitorService) enrichSession(ctx context.Context, sessionID string) error {
	transcript, err := th.Source.GetTranscript(ctx, sessionID)
	if err != nil {
		return err
	}

	if !transcript.HasMeaningfulContent() {
		return errInsufficientContent
	}

	now := time.Now().UTC().Format(time.RFC3339)

	stored := entities.StoredTranscript{
		SessionID:   sessionID,
		Entries:     transcript.Entries,
		ProcessedAt: now,
	}
	transcriptData, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := th.Store.Save(ctx, repocontants.TranscriptKey(sessionID), transcriptData); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	summary, err := th.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		return fmt.Errorf("failed to summarize session: %w", err)
	}
	summary.SessionID = sessionID
	summary.ProcessedAt = now

	summaryData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := th.Store.Save(ctx, repocontants.SummaryKey(sessionID), summaryData); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	th.generateSkill(ctx, sessionID, summary)
	return nil
}

// generateSkill is best-effort: a skill failure is logged and does not fail
// the session.
func (th *MonitorService) generateSkill(ctx context.Context, sessionID string, summary entities.ConversationSummary) {
	if th.SkillGenerator == nil {
		return
	}

	workflows := th.loadWorkflows(ctx, sessionID)

	content, err := th.SkillGenerator.Generate(ctx, &summary, workflows)
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to generate skill file for session %s: %v", shortID(sessionID), err))
		return
	}

	skill := entities.SkillRecord{
		SessionID:    sessionID,
		SkillContent: content,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(skill, "", "  ")
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to marshal skill file for session %s: %v", shortID(sessionID), err))
		return
	}

	if err := th.Store.Save(ctx, repocontants.SkillKey(sessionID), data); err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to save skill file for session %s: %v", shortID(sessionID), err))
		return
	}
	th.Logger.Info(fmt.Sprintf("Generated skill file for session %s", shortID(sessionID)))
}

func (th *MonitorService) loadWorkflows(ctx context.Context, sessionID string) []entities.Workflow {
	data, err := th.Store.Load(ctx, repocontants.WorkflowKey(sessionID))
	if err != nil {
		if !errors.Is(err, Irepository.ErrObjectNotFound) {
			th.Logger.Debug(fmt.Sprintf("No workflows found for session %s: %v", shortID(sessionID), err))
		}
		return nil
	}

	var record entities.WorkflowRecord
	if err := json.Unmarshal(data, &record); err != nil {
		th.Logger.Warn(fmt.Sprintf("Unparseable workflow record for session %s: %v", shortID(sessionID), err))
		return nil
	}
	return record.Workflows
}

func shortID(sessionID string) string {
	if len(sessionID) > 20 {
		return sessionID[:20] + "..."
	}
	return sessionID
}
