package routes

import (
	"encoding/json"
	"net/http"
	"session-monitor/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux         *mux.Router
	HttpHandler *handlers.HttpHandlers
}

func NewRoutes(mux *mux.Router, HttpHandler *handlers.HttpHandlers) *Routes {
	return &Routes{mux, HttpHandler}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/sessions", r.HttpHandler.ListSessions).Methods(http.MethodGet)
	r.Mux.HandleFunc("/sessions/{sessionId}", r.HttpHandler.GetSession).Methods(http.MethodGet)
	r.Mux.HandleFunc("/process", r.HttpHandler.TriggerProcess).Methods(http.MethodPost)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy", "service": "session-monitor"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
