package jobs

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harborline/backend-brokerage/internal/common"
)

// Handler exposes job lookup endpoints.
type Handler struct {
	provider Provider
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Provider Provider
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{provider: cfg.Provider}
}

// Get handles GET /api/v1/jobs/{jobRef}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "job provider not configured", nil)
		return
	}
	jobRef := strings.TrimSpace(chi.URLParam(r, "jobRef"))
	if jobRef == "" {
		common.WriteError(w, common.ValidationError("job reference required"))
		return
	}
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	rec, err := h.provider.GetJob(r.Context(), jobRef, period)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}
