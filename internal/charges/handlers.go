package charges

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/harborline/backend-brokerage/internal/common"
)

// Handler exposes the workstation charge endpoints.
type Handler struct {
	Adapter  *Adapter
	Registry *Registry
	Validate *validator.Validate
	Log      zerolog.Logger
}

type selectJobRequest struct {
	JobReference string `json:"jobReference" validate:"required,max=64"`
	Period       string `json:"period" validate:"max=16"`
}

type setFieldRequest struct {
	Value string `json:"value" validate:"max=40"`
}

type customFieldRequest struct {
	Name  string `json:"name" validate:"max=120"`
	Value string `json:"value" validate:"max=40"`
}

// SelectJob handles POST /workspaces/{station}/job. The looked-up record
// seeds a fresh charge set, replacing any previously active job.
func (h *Handler) SelectJob(w http.ResponseWriter, r *http.Request) {
	station := chi.URLParam(r, "station")
	var req selectJobRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	req.JobReference = strings.TrimSpace(req.JobReference)
	req.Period = strings.TrimSpace(req.Period)
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("job reference required"))
		return
	}
	store, err := h.Adapter.LoadJob(r.Context(), station, req.JobReference, req.Period)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.workspaceView(store)})
}

// Workspace handles GET /workspaces/{station}.
func (h *Handler) Workspace(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Registry.Get(chi.URLParam(r, "station"))
	if !ok {
		common.WriteError(w, ErrNoActiveJob(chi.URLParam(r, "station")))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.workspaceView(store)})
}

// SetField handles PUT /workspaces/{station}/fields/{key}. The raw value is
// stored as-is; only the field key is validated.
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Registry.Get(chi.URLParam(r, "station"))
	if !ok {
		common.WriteError(w, ErrNoActiveJob(chi.URLParam(r, "station")))
		return
	}
	var req setFieldRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("value too long"))
		return
	}
	if err := store.SetField(chi.URLParam(r, "key"), req.Value); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.Snapshot()})
}

// AddCustomField handles POST /workspaces/{station}/custom-fields.
func (h *Handler) AddCustomField(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Registry.Get(chi.URLParam(r, "station"))
	if !ok {
		common.WriteError(w, ErrNoActiveJob(chi.URLParam(r, "station")))
		return
	}
	var req customFieldRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("field too long"))
		return
	}
	field, err := store.AddCustomField(strings.TrimSpace(req.Name), strings.TrimSpace(req.Value))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": field})
}

// UpdateCustomField handles PUT /workspaces/{station}/custom-fields/{id}.
func (h *Handler) UpdateCustomField(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Registry.Get(chi.URLParam(r, "station"))
	if !ok {
		common.WriteError(w, ErrNoActiveJob(chi.URLParam(r, "station")))
		return
	}
	var req customFieldRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("field too long"))
		return
	}
	if err := store.UpdateCustomField(chi.URLParam(r, "id"), strings.TrimSpace(req.Name), strings.TrimSpace(req.Value)); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.Snapshot()})
}

// RemoveCustomField handles DELETE /workspaces/{station}/custom-fields/{id}.
// Removing an id that is already gone succeeds.
func (h *Handler) RemoveCustomField(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Registry.Get(chi.URLParam(r, "station"))
	if !ok {
		common.WriteError(w, ErrNoActiveJob(chi.URLParam(r, "station")))
		return
	}
	store.RemoveCustomField(chi.URLParam(r, "id"))
	common.JSON(w, http.StatusOK, map[string]any{"data": store.Snapshot()})
}

// Calculate handles POST /workspaces/{station}/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	station := chi.URLParam(r, "station")
	result, warnings, err := h.Adapter.Recalculate(r.Context(), station)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"result":   result,
		"warnings": warnings,
	}})
}

// DropWorkspace handles DELETE /workspaces/{station}.
func (h *Handler) DropWorkspace(w http.ResponseWriter, r *http.Request) {
	h.Registry.Drop(chi.URLParam(r, "station"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) workspaceView(store *Store) map[string]any {
	view := map[string]any{
		"chargeSet": store.Snapshot(),
		"warnings":  store.Warnings(),
	}
	if res, ok := store.Result(); ok {
		view["result"] = res
	} else {
		view["result"] = nil
	}
	return view
}
