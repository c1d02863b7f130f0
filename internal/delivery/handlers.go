package delivery

import (
	"database/sql"
	"net/http"

	"github.com/KPEKEP/universal-llm-chatbot/internal/ratelimit"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Handler struct {
	db           *sql.DB
	users        user.Service
	limiter      *ratelimit.Limiter
	providerName string
	log          *zap.SugaredLogger
}

func NewHandler(db *sql.DB, users user.Service, limiter *ratelimit.Limiter, providerName string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		db:           db,
		users:        users,
		limiter:      limiter,
		providerName: providerName,
		log:          log,
	}
}

func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.log.Warnw("healthz db ping fail", "err", err)
		http.Error(w, "db unreachable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"provider": h.providerName,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.users.Count(r.Context())
	if err != nil {
		h.log.Warnw("stats count fail", "err", err)
		http.Error(w, "failed to count users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"users":           count,
		"tracked_buckets": h.limiter.TrackedUsers(),
		"global_tokens":   h.limiter.GlobalTokens(),
	})
}
