package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ncasas/obra-service/internal/models"
)

func horizonVars(r *http.Request) (uuid.UUID, int, error) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		return uuid.Nil, 0, err
	}
	days, err := strconv.Atoi(vars["days"])
	if err != nil {
		return uuid.Nil, 0, err
	}
	return id, days, nil
}

// HorizonMatrix handles GET /projects/{id}/horizons.
func (h *Handler) HorizonMatrix(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
		return
	}

	matrix, err := h.horizon.PendingMatrix(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

// HorizonBucket handles GET /projects/{id}/horizons/{days}.
func (h *Handler) HorizonBucket(w http.ResponseWriter, r *http.Request) {
	id, days, err := horizonVars(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id or horizon"})
		return
	}

	bucket, err := h.horizon.PendingByHorizon(r.Context(), id, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

// HorizonDetail handles GET /projects/{id}/horizons/{days}/movements.
func (h *Handler) HorizonDetail(w http.ResponseWriter, r *http.Request) {
	id, days, err := horizonVars(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id or horizon"})
		return
	}

	category := models.HorizonCategory(r.URL.Query().Get("category"))
	if category != models.HorizonIncoming && category != models.HorizonOutgoing {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category must be incoming or outgoing"})
		return
	}

	detail, err := h.horizon.PendingDetailByHorizon(r.Context(), id, days, category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
