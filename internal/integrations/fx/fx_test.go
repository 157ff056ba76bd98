package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/config"
)

const boardXML = `<?xml version="1.0" encoding="utf-8"?>
<cotizaciones fecha="2026-08-31">
  <moneda codigo="USD"><compra>1460.00</compra><venta>1480.50</venta></moneda>
  <moneda codigo="EUR"><compra>1590.00</compra><venta>1612.75</venta></moneda>
</cotizaciones>`

func newTestClient(url string) *Client {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewClient(&config.Config{FxFeedURL: url}, log)
}

func TestParseBoard(t *testing.T) {
	t.Parallel()

	c := newTestClient("")

	rate, asOf, err := c.parseBoard([]byte(boardXML), "USD")
	if err != nil {
		t.Fatalf("parseBoard: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("1480.50")) {
		t.Errorf("rate = %s, want 1480.50", rate)
	}
	if got := asOf.Format("2006-01-02"); got != "2026-08-31" {
		t.Errorf("asOf = %s, want 2026-08-31", got)
	}

	rate, _, err = c.parseBoard([]byte(boardXML), "EUR")
	if err != nil {
		t.Fatalf("parseBoard EUR: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("1612.75")) {
		t.Errorf("EUR rate = %s, want 1612.75", rate)
	}
}

func TestParseBoardUnknownCurrency(t *testing.T) {
	t.Parallel()

	c := newTestClient("")
	if _, _, err := c.parseBoard([]byte(boardXML), "BRL"); err == nil {
		t.Error("expected error for currency missing from the board")
	}
}

func TestParseBoardMalformedXML(t *testing.T) {
	t.Parallel()

	c := newTestClient("")
	if _, _, err := c.parseBoard([]byte("<cotizaciones"), "USD"); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestGetRate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(boardXML))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	quote, err := c.GetRate(context.Background(), "USD")
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if !quote.Rate.Equal(decimal.RequireFromString("1480.50")) {
		t.Errorf("rate = %s, want 1480.50", quote.Rate)
	}
}

func TestGetRateServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.GetRate(context.Background(), "USD"); err == nil {
		t.Error("expected error on non-200 response")
	}
}
