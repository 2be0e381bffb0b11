package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-monitor/internal/domain/entities"
	Irepository "session-monitor/internal/domain/interfaces/repository"
	repocontants "session-monitor/internal/domain/interfaces/repository/contants"
	"session-monitor/internal/infra/provider"
	"session-monitor/internal/infra/repository"
	"session-monitor/internal/infra/services"
)

type fakeSource struct {
	mu              sync.Mutex
	sessionIDs      []string
	listErr         error
	transcripts     map[string]entities.SessionTranscript
	transcriptErrs  map[string]error
	transcriptCalls map[string]int
	entered         chan struct{}
	gate            chan struct{}
}

func (f *fakeSource) GetSessionIDs(ctx context.Context) ([]string, error) {
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessionIDs, nil
}

func (f *fakeSource) GetTranscript(ctx context.Context, sessionID string) (entities.SessionTranscript, error) {
	f.mu.Lock()
	if f.transcriptCalls == nil {
		f.transcriptCalls = map[string]int{}
	}
	f.transcriptCalls[sessionID]++
	f.mu.Unlock()

	if err, ok := f.transcriptErrs[sessionID]; ok {
		return entities.SessionTranscript{}, err
	}
	transcript, ok := f.transcripts[sessionID]
	if !ok {
		return entities.SessionTranscript{}, provider.ErrTranscriptUnavailable
	}
	return transcript, nil
}

func (f *fakeSource) calls(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcriptCalls[sessionID]
}

type fakeSummarizer struct {
	mu    sync.Mutex
	count int
	err   error
	hook  func()
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript entities.SessionTranscript) (entities.ConversationSummary, error) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return entities.ConversationSummary{}, f.err
	}
	return entities.ConversationSummary{
		SessionID:      transcript.SessionID,
		OverallSummary: "Summary for " + transcript.SessionID,
	}, nil
}

func (f *fakeSummarizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// failingStore fails Save on keys matching a prefix; everything else passes
// through to the wrapped store.
type failingStore struct {
	Irepository.ObjectStore
	failPrefix string
}

func (f *failingStore) Save(ctx context.Context, key string, data []byte) error {
	if f.failPrefix != "" && strings.HasPrefix(key, f.failPrefix) {
		return fmt.Errorf("simulated write failure for %s", key)
	}
	return f.ObjectStore.Save(ctx, key, data)
}

func transcriptWithTurns(sessionID string, turns int) entities.SessionTranscript {
	transcript := entities.SessionTranscript{SessionID: sessionID}
	for i := 0; i < turns; i++ {
		role := entities.RoleAgent
		if i%2 == 1 {
			role = entities.RoleUser
		}
		transcript.Entries = append(transcript.Entries, entities.TranscriptEntry{
			Text:      fmt.Sprintf("turn %d", i),
			Role:      role,
			Timestamp: int64(1700000000000 + i),
		})
	}
	return transcript
}

func newMonitor(store Irepository.ObjectStore, source *fakeSource, summarizer *fakeSummarizer) (*services.MonitorService, *services.StateService) {
	ctx := context.Background()
	log := newTestLogger(ctx)
	state := services.NewStateService(log, store)
	monitor := services.NewMonitorService(log, source, store, state, summarizer, nil)
	return monitor, state
}

func TestRunOnceShortAndMeaningfulTranscripts(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs: []string{"s1", "s2"},
		transcripts: map[string]entities.SessionTranscript{
			"s1": transcriptWithTurns("s1", 1),
			"s2": transcriptWithTurns("s2", 5),
		},
	}
	summarizer := &fakeSummarizer{}
	monitor, state := newMonitor(store, source, summarizer)

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	// The short transcript is rejected before anything is persisted and
	// never reaches the summarizer.
	exists, err := store.Exists(ctx, repocontants.TranscriptKey("s1"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, summarizer.calls())

	processed, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"s2": true}, processed)

	summaryData, err := store.Load(ctx, repocontants.SummaryKey("s2"))
	require.NoError(t, err)
	var summary entities.ConversationSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.NotEmpty(t, summary.OverallSummary)
	assert.Equal(t, "s2", summary.SessionID)

	transcriptData, err := store.Load(ctx, repocontants.TranscriptKey("s2"))
	require.NoError(t, err)
	var storedTranscript entities.StoredTranscript
	require.NoError(t, json.Unmarshal(transcriptData, &storedTranscript))
	assert.Len(t, storedTranscript.Entries, 5)
}

func TestRunOnceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs: []string{"s2"},
		transcripts: map[string]entities.SessionTranscript{
			"s2": transcriptWithTurns("s2", 4),
		},
	}
	summarizer := &fakeSummarizer{}
	monitor, _ := newMonitor(store, source, summarizer)

	_, err := monitor.RunOnce(ctx)
	require.NoError(t, err)

	keys := []string{
		repocontants.TranscriptKey("s2"),
		repocontants.SummaryKey("s2"),
		repocontants.STATE_OBJECT_KEY,
	}
	before := map[string][]byte{}
	for _, key := range keys {
		data, err := store.Load(ctx, key)
		require.NoError(t, err)
		before[key] = data
	}

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Discovered)
	assert.Equal(t, 1, summarizer.calls(), "second pass must not call the summarizer again")
	assert.Equal(t, 1, source.calls("s2"), "transcript must be fetched only once across passes")

	for _, key := range keys {
		data, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, before[key], data, "blob %s changed on an idempotent pass", key)
	}
}

func TestRunOnceSkipsAlreadyProcessedSessions(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs: []string{"s1", "s2"},
		transcripts: map[string]entities.SessionTranscript{
			"s1": transcriptWithTurns("s1", 4),
			"s2": transcriptWithTurns("s2", 4),
		},
	}
	summarizer := &fakeSummarizer{}
	monitor, state := newMonitor(store, source, summarizer)

	require.NoError(t, state.MarkProcessed(ctx, "s1"))

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, source.calls("s1"), "processed sessions must not be re-fetched")
	assert.Equal(t, 1, source.calls("s2"))
}

func TestRunOnceTranscriptUnavailableIsRetriedNextPass(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs:  []string{"s1"},
		transcripts: map[string]entities.SessionTranscript{},
	}
	summarizer := &fakeSummarizer{}
	monitor, state := newMonitor(store, source, summarizer)

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	processed, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	// The transcript shows up later; the next pass picks the session up.
	source.transcripts["s1"] = transcriptWithTurns("s1", 4)
	report, err = monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 2, source.calls("s1"))
}

func TestRunOnceSummarizerFailureLeavesSessionUnprocessed(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs: []string{"s1"},
		transcripts: map[string]entities.SessionTranscript{
			"s1": transcriptWithTurns("s1", 4),
		},
	}
	summarizer := &fakeSummarizer{err: errors.New("model unreachable")}
	monitor, state := newMonitor(store, source, summarizer)

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err, "a per-session failure must not fail the pass")
	assert.Equal(t, 1, report.Failed)

	processed, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	exists, err := store.Exists(ctx, repocontants.SummaryKey("s1"))
	require.NoError(t, err)
	assert.False(t, exists)

	// The model recovers; the session is retried and completes.
	summarizer.err = nil
	report, err = monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
}

func TestRunOnceSummaryWriteFailureNotMarkedProcessed(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{
		ObjectStore: repository.NewMemoryStore(),
		failPrefix:  repocontants.SUMMARIES_PREFIX,
	}
	source := &fakeSource{
		sessionIDs: []string{"s1"},
		transcripts: map[string]entities.SessionTranscript{
			"s1": transcriptWithTurns("s1", 4),
		},
	}
	summarizer := &fakeSummarizer{}
	monitor, state := newMonitor(store, source, summarizer)

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	processed, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)
}

func TestRunOnceCorruptStateAbortsPass(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Save(ctx, repocontants.STATE_OBJECT_KEY, []byte("{{broken")))

	source := &fakeSource{sessionIDs: []string{"s1"}}
	summarizer := &fakeSummarizer{}
	monitor, _ := newMonitor(store, source, summarizer)

	_, err := monitor.RunOnce(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrCorruptState)
	assert.Equal(t, 0, source.calls("s1"))
}

func TestRunOnceCancellationStopsBetweenSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := repository.NewMemoryStore()
	source := &fakeSource{
		sessionIDs: []string{"s1", "s2"},
		transcripts: map[string]entities.SessionTranscript{
			"s1": transcriptWithTurns("s1", 4),
			"s2": transcriptWithTurns("s2", 4),
		},
	}
	// Cancel while the first session is being summarized: its enrichment
	// finishes, the second session is never started.
	summarizer := &fakeSummarizer{hook: cancel}
	monitor, state := newMonitor(store, source, summarizer)

	report, err := monitor.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, source.calls("s2"))

	processed, err := state.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"s1": true}, processed)
}

func TestRunOnceRejectsOverlappingPass(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	gate := make(chan struct{})
	entered := make(chan struct{})
	source := &fakeSource{sessionIDs: []string{}, gate: gate, entered: entered}
	summarizer := &fakeSummarizer{}
	monitor, _ := newMonitor(store, source, summarizer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = monitor.RunOnce(ctx)
	}()

	// Wait until the first pass holds the lock inside the source call, then
	// a concurrent trigger must be rejected rather than queued.
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first pass never reached the session source")
	}

	_, err := monitor.RunOnce(ctx)
	assert.ErrorIs(t, err, services.ErrPassInProgress)

	close(gate)
	<-done

	// With the first pass finished, a new pass runs normally.
	_, err = monitor.RunOnce(ctx)
	require.NoError(t, err)
}
