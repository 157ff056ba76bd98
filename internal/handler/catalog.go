package handler

import (
	"net/http"

	"github.com/ncasas/obra-service/internal/money"
)

// Catalogs handles GET /catalogs: the parallel form-data prefetch.
func (h *Handler) Catalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.catalogs.Prefetch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogs)
}

// FxRate handles GET /fx/rate?currency=USD.
func (h *Handler) FxRate(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency != money.USD && currency != money.EUR {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "currency must be USD or EUR"})
		return
	}

	quote, err := h.rates.GetRate(r.Context(), currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currency": currency,
		"rate":     quote.Rate,
		"as_of":    quote.AsOf.Format("2006-01-02"),
	})
}
