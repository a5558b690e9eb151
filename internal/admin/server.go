package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"warehouse-sync/internal/runner"
)

// Controller is the runner surface the admin API exposes. Triggers are
// asynchronous: the handler acknowledges and the pass runs in the background.
type Controller interface {
	TriggerFull(ctx context.Context) bool
	TriggerTables(ctx context.Context, names []string) bool
	Running() bool
	LastRun() time.Time
	Jobs() []runner.JobInfo
	TableNames() []string
}

// Server is the admin HTTP surface: manual sync triggers, scheduler status,
// the table inventory, health, and metrics.
type Server struct {
	ctrl Controller
	log  zerolog.Logger
	mux  *mux.Router
}

func NewServer(ctrl Controller, reg prometheus.Gatherer, log zerolog.Logger) *Server {
	s := &Server{ctrl: ctrl, log: log.With().Str("component", "admin").Logger()}

	r := mux.NewRouter()
	r.HandleFunc("/sync/full", s.handleSyncFull).Methods(http.MethodPost)
	r.HandleFunc("/sync/tables", s.handleSyncTables).Methods(http.MethodPost)
	r.HandleFunc("/sync/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/tables", s.handleTables).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.mux = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleSyncFull(w http.ResponseWriter, r *http.Request) {
	if !s.ctrl.TriggerFull(context.WithoutCancel(r.Context())) {
		s.writeJSON(w, http.StatusConflict, map[string]string{"message": "Sync already in progress"})
		return
	}
	s.log.Info().Msg("full sync triggered")
	s.writeJSON(w, http.StatusAccepted, map[string]string{"message": "Sync triggered"})
}

func (s *Server) handleSyncTables(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tables []string `json:"tables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Tables) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Body must be {\"tables\": [..]} with at least one name"})
		return
	}
	if !s.ctrl.TriggerTables(context.WithoutCancel(r.Context()), body.Tables) {
		s.writeJSON(w, http.StatusConflict, map[string]string{"message": "Sync already in progress"})
		return
	}
	s.log.Info().Strs("tables", body.Tables).Msg("table sync triggered")
	s.writeJSON(w, http.StatusAccepted, map[string]string{"message": "Sync triggered"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := "idle"
	if s.ctrl.Running() {
		status = "running"
	}
	resp := map[string]any{
		"status":         status,
		"scheduled_jobs": s.ctrl.Jobs(),
	}
	if last := s.ctrl.LastRun(); !last.IsZero() {
		resp["last_run"] = last.Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	names := s.ctrl.TableNames()
	s.writeJSON(w, http.StatusOK, map[string]any{"tables": names, "count": len(names)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}
