package http

import (
	"context"
	"net/http"
	"time"

	"rentwear-backend/internal/domain"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respondError(w, r, domain.Upstream(err, "database unavailable"))
			return
		}
	}
	respond(w, http.StatusOK, "ok", nil)
}
