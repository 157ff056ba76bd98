package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/service"
)

// Handler exposes the services over JSON HTTP.
type Handler struct {
	auth      *service.AuthService
	budget    *service.BudgetService
	horizon   *service.HorizonService
	catalogs  *service.CatalogService
	movements service.MovementStore
	rates     service.RateSource
	uploads   service.AttachmentStore
	log       *logrus.Logger
}

// NewHandler wires the handler with its services.
func NewHandler(
	auth *service.AuthService,
	budget *service.BudgetService,
	horizon *service.HorizonService,
	catalogs *service.CatalogService,
	movements service.MovementStore,
	rates service.RateSource,
	uploads service.AttachmentStore,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		budget:    budget,
		horizon:   horizon,
		catalogs:  catalogs,
		movements: movements,
		rates:     rates,
		uploads:   uploads,
		log:       log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Validation errors
// are the client's to fix; everything else surfaces verbatim.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsValidation(err), errors.Is(err, service.ErrNoSubItems):
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
