package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
)

// MovementStore persists movements.
type MovementStore interface {
	CreateMovement(ctx context.Context, m *models.Movement) error
	UpdateMovement(ctx context.Context, m *models.Movement) error
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	GetMovement(ctx context.Context, id uuid.UUID) (*models.Movement, error)
	ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.Movement, error)
	// ListPendingInWindow returns PENDING movements for a project dated
	// within [from, to], both inclusive.
	ListPendingInWindow(ctx context.Context, projectID uuid.UUID, from, to time.Time) ([]models.Movement, error)
}

// BudgetStore persists the partida/subpartida hierarchy.
type BudgetStore interface {
	GetPartida(ctx context.Context, id uuid.UUID) (*models.Partida, error)
	ListPartidas(ctx context.Context, projectID uuid.UUID) ([]models.Partida, error)
	UpdatePartidaAggregates(ctx context.Context, id uuid.UUID, budget decimal.Decimal, progress int, status models.BudgetStatus) error
	GetSubPartida(ctx context.Context, id uuid.UUID) (*models.SubPartida, error)
	ListSubPartidas(ctx context.Context, partidaID uuid.UUID) ([]models.SubPartida, error)
	UpdateSubPartida(ctx context.Context, id uuid.UUID, upd models.SubPartidaUpdate) (*models.SubPartida, error)
	DeleteSubPartida(ctx context.Context, id uuid.UUID) error
	// DistributeBudget writes the same budget to every subpartida of a
	// partida and the total to the partida itself, in one transaction.
	DistributeBudget(ctx context.Context, partidaID uuid.UUID, perChild, total decimal.Decimal) error
	// RecalculatePartidaCost recomputes a partida's accumulated cost as
	// the sum of its linked, non-cancelled expense movements in base
	// currency, persists it, and returns the new value.
	RecalculatePartidaCost(ctx context.Context, partidaID uuid.UUID) (decimal.Decimal, error)
}

// PartidaCostRefresher re-derives a partida's accumulated cost after a
// movement referencing it is persisted or removed.
type PartidaCostRefresher interface {
	RefreshPartidaCost(ctx context.Context, partidaID uuid.UUID) (*models.Partida, error)
}

// CatalogStore loads the reference data movement forms depend on.
type CatalogStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListCounterparties(ctx context.Context, kind string) ([]models.Counterparty, error)
}

// Rate is a quoted conversion rate into the base currency.
type Rate struct {
	Rate decimal.Decimal
	AsOf time.Time
}

// RateSource quotes currency→ARS rates. Best effort: callers must stay
// usable when it fails.
type RateSource interface {
	GetRate(ctx context.Context, currency string) (Rate, error)
}

// AttachmentStore uploads a receipt blob and returns a durable URL.
type AttachmentStore interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// AlertSender delivers budget alerts. Failures are logged, never fatal.
type AlertSender interface {
	OverBudgetAlert(ctx context.Context, partida *models.Partida) error
}
