package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
	apimw "github.com/hamed0406/netwatch/internal/httpapi/middleware"
	"github.com/hamed0406/netwatch/internal/publisher"
	"github.com/hamed0406/netwatch/internal/repo"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// StatusSource is the part of the monitor the API needs.
type StatusSource interface {
	Status() domain.NetworkStatus
	Refresh(ctx context.Context) domain.NetworkStatus
	Subscribe(fn publisher.Listener) (unsubscribe func())
}

type Server struct {
	Logger  *zap.Logger
	Monitor StatusSource
	History repo.TransitionStore
}

func NewServer(l *zap.Logger, m StatusSource, history repo.TransitionStore) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Monitor: m, History: history}
}

type statusResponse struct {
	Status domain.NetworkStatus `json:"status"`
	State  domain.State         `json:"state"`
	Banner banner.View          `json:"banner"`
}

// newStatusResponse derives state and banner from s so the three always agree.
func newStatusResponse(s domain.NetworkStatus) statusResponse {
	return statusResponse{Status: s, State: s.State(), Banner: banner.Render(s)}
}

// Router builds the HTTP surface. origins empty or ["*"] allows any origin.
func (s *Server) Router(keys apimw.Keys, origins []string, refreshRPM, refreshBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(corsHandler(origins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/actuator/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	})

	r.Route("/api/status", func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Get("/", s.handleStatus)
		r.Get("/history", s.handleHistory)
		r.Get("/ws", s.handleStatusWS(origins))
		r.With(apimw.RequireAdmin(keys), apimw.RateLimit(refreshRPM, refreshBurst)).
			Post("/refresh", s.handleRefresh)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if allowsAnyOrigin(origins) {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(s.Monitor.Status()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	st := s.Monitor.Refresh(r.Context())
	s.Logger.Info("refresh_requested",
		zap.Bool("connected", st.IsConnected),
		zap.Bool("server_reachable", st.IsServerReachable),
	)
	writeJSON(w, http.StatusOK, newStatusResponse(st))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeJSON(w, http.StatusOK, []repo.Transition{})
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	list, err := s.History.List(r.Context(), limit)
	if err != nil {
		s.Logger.Warn("history_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	if list == nil {
		list = []repo.Transition{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
