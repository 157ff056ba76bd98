package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus is the traffic-light indicator derived from the
// cost/budget ratio of a partida.
type BudgetStatus string

const (
	BudgetGreen  BudgetStatus = "green"
	BudgetYellow BudgetStatus = "yellow"
	BudgetRed    BudgetStatus = "red"
)

// Partida is a top-level budget line item (cost category / work item)
// within a project. When it has subpartidas its budget and progress are
// aggregates of the children: budget is the sum, progress the rounded
// arithmetic mean.
type Partida struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Budget          decimal.Decimal `json:"budget"`
	AccumulatedCost decimal.Decimal `json:"accumulated_cost"`
	ProgressPercent int             `json:"progress_percent"`
	Status          BudgetStatus    `json:"status"`
	OrderIndex      int             `json:"order_index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SubPartida is a child line item beneath a Partida, the unit at which
// progress and granular cost are tracked.
type SubPartida struct {
	ID              uuid.UUID       `json:"id"`
	PartidaID       uuid.UUID       `json:"partida_id"`
	Name            string          `json:"name"`
	Budget          decimal.Decimal `json:"budget"`
	AccumulatedCost decimal.Decimal `json:"accumulated_cost"`
	ProgressPercent int             `json:"progress_percent"`
	OrderIndex      int             `json:"order_index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SubPartidaUpdate carries the user-editable fields of a subpartida.
// Nil means "leave unchanged".
type SubPartidaUpdate struct {
	Name            *string          `json:"name,omitempty"`
	Budget          *decimal.Decimal `json:"budget,omitempty"`
	ProgressPercent *int             `json:"progress_percent,omitempty"`
}
