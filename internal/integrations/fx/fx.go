// Package fx quotes foreign-currency→ARS rates from a daily XML quote
// board. Lookups are best effort: callers fall back to manual rate
// entry when the feed is unreachable.
package fx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/config"
	"github.com/ncasas/obra-service/internal/service"
)

// Client fetches the quote board over HTTP and extracts per-currency
// selling rates.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new quote-board client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.FxFeedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetchBoard downloads the raw XML quote board.
func (c *Client) fetchBoard(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	// Log the raw XML response for debugging
	c.log.Debugf("FX feed XML response: %s", string(body))

	return body, nil
}

// parseBoard extracts the selling rate and quote date for one currency
// from the board XML:
//
//	<cotizaciones fecha="2026-09-01">
//	  <moneda codigo="USD"><venta>1480.50</venta></moneda>
//	  ...
//	</cotizaciones>
func (c *Client) parseBoard(rawBody []byte, currency string) (decimal.Decimal, time.Time, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to parse XML: %v", err)
	}

	root := doc.FindElement("//cotizaciones")
	if root == nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("no quote board found in XML")
	}

	asOf := time.Now()
	if fecha := root.SelectAttrValue("fecha", ""); fecha != "" {
		if parsed, err := time.Parse("2006-01-02", fecha); err == nil {
			asOf = parsed
		}
	}

	path := fmt.Sprintf("./moneda[@codigo='%s']/venta", currency)
	rateElement := root.FindElement(path)
	if rateElement == nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("no quote for currency %s", currency)
	}

	rate, err := decimal.NewFromString(rateElement.Text())
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to parse rate: %v", err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, time.Time{}, fmt.Errorf("non-positive rate %s for currency %s", rate, currency)
	}

	return rate, asOf, nil
}

// GetRate retrieves the current currency→ARS selling rate.
func (c *Client) GetRate(ctx context.Context, currency string) (service.Rate, error) {
	body, err := c.fetchBoard(ctx)
	if err != nil {
		return service.Rate{}, err
	}

	rate, asOf, err := c.parseBoard(body, currency)
	if err != nil {
		return service.Rate{}, err
	}

	c.log.Infof("Retrieved %s rate: %s (quoted %s)", currency, rate, asOf.Format("2006-01-02"))
	return service.Rate{Rate: rate, AsOf: asOf}, nil
}
