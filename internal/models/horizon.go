package models

import "github.com/shopspring/decimal"

// HorizonDays is the fixed set of projection windows, in days.
var HorizonDays = []int{7, 30, 60, 90}

// HorizonBucket is a derived, non-persisted cash projection for one
// horizon window: pending movements dated within [today, today+Days],
// summed in base currency (ARS).
type HorizonBucket struct {
	Days     int             `json:"days"`
	Incoming decimal.Decimal `json:"incoming"`
	Outgoing decimal.Decimal `json:"outgoing"`
	Net      decimal.Decimal `json:"net"`
}

// HorizonCategory selects which side of a bucket a drill-down targets.
type HorizonCategory string

const (
	HorizonIncoming HorizonCategory = "incoming"
	HorizonOutgoing HorizonCategory = "outgoing"
)
