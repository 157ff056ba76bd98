package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/models"
)

// HorizonService projects near-term cash flow by bucketing pending
// movements into fixed day-horizons. Every call re-queries the store;
// at single-project movement volumes that is cheaper than keeping a
// cache coherent.
type HorizonService struct {
	store MovementStore
	log   *logrus.Logger
	nowFn func() time.Time
}

// NewHorizonService wires the projector against a movement store.
func NewHorizonService(store MovementStore, log *logrus.Logger) *HorizonService {
	return &HorizonService{store: store, log: log, nowFn: time.Now}
}

// PendingByHorizon sums the project's PENDING movements dated within
// [today, today+days], split into incoming and outgoing, in base
// currency.
func (s *HorizonService) PendingByHorizon(ctx context.Context, projectID uuid.UUID, days int) (models.HorizonBucket, error) {
	pending, err := s.pendingInWindow(ctx, projectID, days)
	if err != nil {
		return models.HorizonBucket{}, err
	}

	bucket := models.HorizonBucket{
		Days:     days,
		Incoming: decimal.Zero,
		Outgoing: decimal.Zero,
	}
	for _, m := range pending {
		if m.IsIncoming() {
			bucket.Incoming = bucket.Incoming.Add(m.AmountInBase)
		} else {
			bucket.Outgoing = bucket.Outgoing.Add(m.AmountInBase)
		}
	}
	bucket.Net = bucket.Incoming.Sub(bucket.Outgoing)
	return bucket, nil
}

// PendingMatrix computes the bucket for each fixed horizon. Each
// horizon is computed from scratch against its own date window, not
// incrementally from the previous one.
func (s *HorizonService) PendingMatrix(ctx context.Context, projectID uuid.UUID) (map[int]models.HorizonBucket, error) {
	matrix := make(map[int]models.HorizonBucket, len(models.HorizonDays))
	for _, days := range models.HorizonDays {
		bucket, err := s.PendingByHorizon(ctx, projectID, days)
		if err != nil {
			return nil, err
		}
		matrix[days] = bucket
	}
	return matrix, nil
}

// PendingDetailByHorizon returns the movements composing one side of a
// bucket, soonest due first, so a bucket total can be drilled into.
func (s *HorizonService) PendingDetailByHorizon(ctx context.Context, projectID uuid.UUID, days int, category models.HorizonCategory) ([]models.Movement, error) {
	pending, err := s.pendingInWindow(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	detail := make([]models.Movement, 0, len(pending))
	for _, m := range pending {
		incoming := m.IsIncoming()
		if (category == models.HorizonIncoming && incoming) ||
			(category == models.HorizonOutgoing && !incoming) {
			detail = append(detail, m)
		}
	}
	sort.Slice(detail, func(i, j int) bool {
		return detail[i].Date.Before(detail[j].Date)
	})
	return detail, nil
}

func (s *HorizonService) pendingInWindow(ctx context.Context, projectID uuid.UUID, days int) ([]models.Movement, error) {
	today := s.today()
	to := today.AddDate(0, 0, days)
	pending, err := s.store.ListPendingInWindow(ctx, projectID, today, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending movements: %w", err)
	}
	return pending, nil
}

func (s *HorizonService) today() time.Time {
	now := s.nowFn()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
