package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
	"github.com/ncasas/obra-service/internal/service"
)

// movementRequest is the movement form payload. Optional fields are
// pointers; absent fields leave the draft untouched on edits.
type movementRequest struct {
	ProjectID      uuid.UUID              `json:"project_id"`
	Type           models.MovementType    `json:"type"`
	Description    *string                `json:"description,omitempty"`
	Date           *time.Time             `json:"date,omitempty"`
	Status         *models.MovementStatus `json:"status,omitempty"`
	Currency       *string                `json:"currency,omitempty"`
	FaceAmount     *decimal.Decimal       `json:"face_amount,omitempty"`
	VatIncluded    *bool                  `json:"vat_included,omitempty"`
	VatRatePercent *decimal.Decimal       `json:"vat_rate_percent,omitempty"`
	FxRate         *decimal.Decimal       `json:"fx_rate,omitempty"`
	AccountID      *int64                 `json:"account_id,omitempty"`
	CounterpartyID *int64                 `json:"counterparty_id,omitempty"`
	PartidaID      *uuid.UUID             `json:"partida_id,omitempty"`
	ReceiptNote    *string                `json:"receipt_note,omitempty"`
	// Receipt attachment, uploaded after validation passes.
	AttachmentName string `json:"attachment_name,omitempty"`
	AttachmentData []byte `json:"attachment_data,omitempty"`
}

// apply replays the request's fields through the controller in the
// order a form would: identity and metadata first, then the fields that
// trigger recomputation, the currency switch, and finally any explicit
// fx rate so a user-typed rate wins over the prefill.
func (req *movementRequest) apply(r *http.Request, ctrl *service.MovementController) {
	if req.Description != nil {
		ctrl.SetDescription(*req.Description)
	}
	if req.Date != nil {
		ctrl.SetDate(*req.Date)
	}
	if req.Status != nil {
		ctrl.SetStatus(*req.Status)
	}
	if req.AccountID != nil {
		ctrl.SetAccount(*req.AccountID)
	}
	if req.CounterpartyID != nil {
		ctrl.SetCounterparty(*req.CounterpartyID)
	}
	if req.PartidaID != nil {
		ctrl.SetPartida(*req.PartidaID)
	}
	if req.ReceiptNote != nil {
		ctrl.SetReceiptNote(*req.ReceiptNote)
	}
	if req.VatIncluded != nil {
		ctrl.SetVatIncluded(*req.VatIncluded)
	}
	if req.VatRatePercent != nil {
		ctrl.SetVatRate(*req.VatRatePercent)
	}
	if req.FaceAmount != nil {
		ctrl.SetFaceAmount(*req.FaceAmount)
	}
	if req.Currency != nil {
		ctrl.SetCurrency(r.Context(), *req.Currency)
	}
	if req.FxRate != nil {
		ctrl.SetFxRate(*req.FxRate)
	}
}

func (req *movementRequest) attachment() *service.Attachment {
	if len(req.AttachmentData) == 0 {
		return nil
	}
	name := req.AttachmentName
	if name == "" {
		name = "receipt"
	}
	return &service.Attachment{Filename: name, Data: req.AttachmentData}
}

// CreateMovement handles POST /movements.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProjectID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project_id is required"})
		return
	}

	ctrl := service.NewMovementController(h.movements, h.rates, h.uploads, h.budget, h.log)
	ctrl.StartNew(req.ProjectID, req.Type)
	req.apply(r, ctrl)

	movement, err := ctrl.Submit(r.Context(), req.attachment())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movement)
}

// UpdateMovement handles PUT /movements/{id}.
func (h *Handler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid movement id"})
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	existing, err := h.movements.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	ctrl := service.NewMovementController(h.movements, h.rates, h.uploads, h.budget, h.log)
	ctrl.StartEdit(existing)
	req.apply(r, ctrl)

	movement, err := ctrl.Submit(r.Context(), req.attachment())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movement)
}

// GetMovement handles GET /movements/{id}.
func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid movement id"})
		return
	}
	movement, err := h.movements.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movement)
}

// ListMovements handles GET /movements with optional filters.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	var filter models.MovementFilter
	q := r.URL.Query()
	if v := q.Get("project"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
			return
		}
		filter.ProjectID = &id
	}
	if v := q.Get("partida"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partida id"})
			return
		}
		filter.PartidaID = &id
	}
	if v := q.Get("status"); v != "" {
		status := models.MovementStatus(v)
		filter.Status = &status
	}
	if v := q.Get("type"); v != "" {
		mtype := models.MovementType(v)
		filter.Type = &mtype
	}

	movements, err := h.movements.ListMovements(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

// DeleteMovement handles DELETE /movements/{id}.
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid movement id"})
		return
	}
	movement, err := h.movements.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.movements.DeleteMovement(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if movement.PartidaID != nil {
		// The movement is gone either way; roll-up failure is logged.
		if _, err := h.budget.RefreshPartidaCost(r.Context(), *movement.PartidaID); err != nil {
			h.log.Warnf("Cost roll-up after deleting movement %s failed: %v", id, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
