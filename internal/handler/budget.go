package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
)

// DistributeBudget handles POST /partidas/{id}/distribute.
func (h *Handler) DistributeBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partida id"})
		return
	}

	var req struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !req.Total.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total must be greater than zero"})
		return
	}

	children, err := h.budget.DistributeBudget(r.Context(), id, req.Total)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// UpdateSubPartida handles PATCH /subpartidas/{id}. The response is the
// recalculated parent partida.
func (h *Handler) UpdateSubPartida(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subpartida id"})
		return
	}

	var upd models.SubPartidaUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if upd.ProgressPercent != nil && (*upd.ProgressPercent < 0 || *upd.ProgressPercent > 100) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "progress must be between 0 and 100"})
		return
	}

	parent, err := h.budget.UpdateSubPartida(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

// DeleteSubPartida handles DELETE /subpartidas/{id}. The response is
// the recalculated parent partida.
func (h *Handler) DeleteSubPartida(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subpartida id"})
		return
	}

	parent, err := h.budget.DeleteSubPartida(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

// PlanView handles GET /projects/{id}/plan.
func (h *Handler) PlanView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
		return
	}

	view, err := h.budget.PlanView(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
