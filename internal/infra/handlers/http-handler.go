package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	Iservices "session-monitor/internal/domain/interfaces/services"
	"session-monitor/internal/infra/logger"
	"session-monitor/internal/infra/services"
)

type HttpHandlers struct {
	Logger          *logger.Logger
	OverviewService Iservices.IOverviewService
	MonitorService  Iservices.IMonitorService
}

func NewHttpHandlers(logger *logger.Logger, overviewService Iservices.IOverviewService, monitorService Iservices.IMonitorService) *HttpHandlers {
	return &HttpHandlers{Logger: logger, OverviewService: overviewService, MonitorService: monitorService}
}

// ListSessions handles GET /sessions.
//
// It returns the joined admin view of every stored session: the session
// record plus its summary, transcript, workflows and skill file whenever
// those artifacts exist. Sessions without a summary are reported with status
// "pending" rather than omitted, so the admin surface can show progress.
//
// HTTP Status Codes:
// - 200 OK: The joined list, sorted by session timestamp descending.
// - 500 Internal Server Error: The object store could not be listed.
func (th *HttpHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	overviews, err := th.OverviewService.ListSessions(r.Context())
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to list sessions: %s", err.Error()))
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, overviews)
}

// GetSession handles GET /sessions/{sessionId}.
//
// HTTP Status Codes:
// - 200 OK: The joined view for the requested session.
// - 404 Not Found: No session record exists for the ID.
// - 500 Internal Server Error: The object store read failed.
func (th *HttpHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	overview, err := th.OverviewService.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		th.Logger.Error(fmt.Sprintf("Failed to get session %s: %s", sessionID, err.Error()))
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// TriggerProcess handles POST /process.
//
// It runs exactly one reconciliation pass synchronously and returns the run
// report. This is the scheduler-facing trigger; per-session failures are
// reflected in the report counts, not in the status code.
//
// HTTP Status Codes:
// - 200 OK: The pass completed; body carries the run report.
// - 409 Conflict: Another pass is already running.
// - 500 Internal Server Error: The pass could not start (corrupt state,
//   unreachable session source).
func (th *HttpHandlers) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	report, err := th.MonitorService.RunOnce(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrPassInProgress) {
			http.Error(w, "A pass is already in progress", http.StatusConflict)
			return
		}
		th.Logger.Error(fmt.Sprintf("Failed to process sessions: %s", err.Error()))
		http.Error(w, "Failed to process sessions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Processed %d session(s)", report.Processed),
		"report":  report,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
