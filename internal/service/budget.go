package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ncasas/obra-service/internal/models"
	"github.com/ncasas/obra-service/internal/money"
)

// BudgetService keeps a partida's aggregate fields consistent with its
// subpartida collection: budget is the sum of child budgets, progress
// the rounded arithmetic mean of child progress.
type BudgetService struct {
	store  BudgetStore
	alerts AlertSender
	log    *logrus.Logger
}

// NewBudgetService wires the aggregator. alerts may be nil to disable
// over-budget notifications.
func NewBudgetService(store BudgetStore, alerts AlertSender, log *logrus.Logger) *BudgetService {
	return &BudgetService{store: store, alerts: alerts, log: log}
}

// DistributeBudget splits a total equally across every subpartida of a
// partida and sets the partida's budget to the total. Existing child
// budgets are overwritten uniformly; prior manual ratios do not weight
// the split. Child and parent writes go through one transaction, so a
// failure leaves the hierarchy untouched.
func (s *BudgetService) DistributeBudget(ctx context.Context, partidaID uuid.UUID, total decimal.Decimal) ([]models.SubPartida, error) {
	children, err := s.store.ListSubPartidas(ctx, partidaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-items: %w", err)
	}
	if len(children) == 0 {
		return nil, ErrNoSubItems
	}

	perChild := total.Div(decimal.NewFromInt(int64(len(children)))).Round(2)
	if err := s.store.DistributeBudget(ctx, partidaID, perChild, total); err != nil {
		return nil, fmt.Errorf("failed to distribute budget across %d sub-items: %w", len(children), err)
	}

	s.log.WithFields(logrus.Fields{
		"partida":   partidaID,
		"total":     total,
		"per_child": perChild,
		"children":  len(children),
	}).Info("Budget distributed")

	updated, err := s.store.ListSubPartidas(ctx, partidaID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sub-items: %w", err)
	}
	return updated, nil
}

// UpdateSubPartida persists a single child's edit and recalculates the
// parent aggregates bottom-up. Called on every individual edit,
// including slider settles, so it stays two queries plus two writes.
func (s *BudgetService) UpdateSubPartida(ctx context.Context, childID uuid.UUID, upd models.SubPartidaUpdate) (*models.Partida, error) {
	child, err := s.store.UpdateSubPartida(ctx, childID, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update sub-item: %w", err)
	}
	return s.recalculateParent(ctx, child.PartidaID)
}

// DeleteSubPartida removes a child and recalculates the parent over the
// remaining siblings. Deleting the last child resets the parent's
// aggregates to zero pending a fresh distribution.
func (s *BudgetService) DeleteSubPartida(ctx context.Context, childID uuid.UUID) (*models.Partida, error) {
	child, err := s.store.GetSubPartida(ctx, childID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteSubPartida(ctx, childID); err != nil {
		return nil, fmt.Errorf("failed to delete sub-item: %w", err)
	}
	return s.recalculateParent(ctx, child.PartidaID)
}

func (s *BudgetService) recalculateParent(ctx context.Context, partidaID uuid.UUID) (*models.Partida, error) {
	siblings, err := s.store.ListSubPartidas(ctx, partidaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load siblings: %w", err)
	}
	parent, err := s.store.GetPartida(ctx, partidaID)
	if err != nil {
		return nil, err
	}

	budget := decimal.Zero
	progress := 0
	if len(siblings) > 0 {
		for _, sib := range siblings {
			budget = budget.Add(sib.Budget)
		}
		progress = averageProgress(siblings)
	}

	wasRed := parent.Status == models.BudgetRed
	status := money.StatusFor(budget, parent.AccumulatedCost)

	if err := s.store.UpdatePartidaAggregates(ctx, partidaID, budget, progress, status); err != nil {
		return nil, fmt.Errorf("failed to update partida aggregates: %w", err)
	}

	parent.Budget = budget
	parent.ProgressPercent = progress
	parent.Status = status

	s.alertIfTurnedRed(ctx, parent, wasRed)

	s.log.Debugf("Partida %s recalculated: budget=%s progress=%d%%", partidaID, budget, progress)
	return parent, nil
}

// RefreshPartidaCost re-derives a partida's accumulated cost from its
// linked movements and refreshes the traffic-light status. Called after
// any movement referencing the partida is persisted or removed.
func (s *BudgetService) RefreshPartidaCost(ctx context.Context, partidaID uuid.UUID) (*models.Partida, error) {
	cost, err := s.store.RecalculatePartidaCost(ctx, partidaID)
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate accumulated cost: %w", err)
	}
	parent, err := s.store.GetPartida(ctx, partidaID)
	if err != nil {
		return nil, err
	}

	wasRed := parent.Status == models.BudgetRed
	status := money.StatusFor(parent.Budget, cost)
	if status != parent.Status {
		if err := s.store.UpdatePartidaAggregates(ctx, partidaID, parent.Budget, parent.ProgressPercent, status); err != nil {
			return nil, fmt.Errorf("failed to update partida status: %w", err)
		}
	}

	parent.AccumulatedCost = cost
	parent.Status = status

	s.alertIfTurnedRed(ctx, parent, wasRed)

	s.log.Debugf("Partida %s cost refreshed: cost=%s status=%s", partidaID, cost, status)
	return parent, nil
}

func (s *BudgetService) alertIfTurnedRed(ctx context.Context, parent *models.Partida, wasRed bool) {
	if parent.Status != models.BudgetRed || wasRed || s.alerts == nil {
		return
	}
	// Best effort: an undelivered alert never fails the aggregation.
	if err := s.alerts.OverBudgetAlert(ctx, parent); err != nil {
		s.log.Warnf("Over-budget alert for partida %s failed: %v", parent.ID, err)
	}
}

// averageProgress is the rounded arithmetic mean of child progress.
// Children weigh equally regardless of budget share.
func averageProgress(children []models.SubPartida) int {
	sum := int64(0)
	for _, c := range children {
		sum += int64(c.ProgressPercent)
	}
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(children))))
	return int(mean.Round(0).IntPart())
}

// PartidaWithSubs pairs a partida with its loaded children for the
// work-plan view.
type PartidaWithSubs struct {
	models.Partida
	SubPartidas []models.SubPartida `json:"subpartidas"`
}

// PlanView loads every partida of a project with its subpartidas. The
// per-partida child loads fan out concurrently and join all-or-error: a
// single failed branch aborts the combined load rather than returning a
// partial plan.
func (s *BudgetService) PlanView(ctx context.Context, projectID uuid.UUID) ([]PartidaWithSubs, error) {
	partidas, err := s.store.ListPartidas(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load partidas: %w", err)
	}

	view := make([]PartidaWithSubs, len(partidas))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range partidas {
		i, p := i, p
		view[i].Partida = p
		g.Go(func() error {
			subs, err := s.store.ListSubPartidas(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to load sub-items of %q: %w", p.Name, err)
			}
			view[i].SubPartidas = subs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
