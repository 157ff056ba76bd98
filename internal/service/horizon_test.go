package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncasas/obra-service/internal/models"
)

func pendingMovement(projectID uuid.UUID, mtype models.MovementType, date time.Time, amountARS string) models.Movement {
	return models.Movement{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Type:         mtype,
		Status:       models.StatusPending,
		Date:         date,
		Currency:     "ARS",
		AmountInBase: dec(amountARS),
	}
}

func newTestHorizon(store *fakeMovementStore, now time.Time) *HorizonService {
	svc := NewHorizonService(store, testLogger())
	svc.nowFn = func() time.Time { return now }
	return svc
}

func TestPendingByHorizonPartitionsAndNets(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	now := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	store := newFakeMovementStore()

	add := func(m models.Movement) { store.movements[m.ID] = m }
	add(pendingMovement(projectID, models.MovementIncome, now.AddDate(0, 0, 2), "500000"))
	add(pendingMovement(projectID, models.MovementInvestmentReceived, now.AddDate(0, 0, 5), "1000000"))
	add(pendingMovement(projectID, models.MovementExpense, now.AddDate(0, 0, 3), "300000"))
	add(pendingMovement(projectID, models.MovementInvestmentReturn, now.AddDate(0, 0, 6), "200000"))
	// Outside the 7-day window.
	add(pendingMovement(projectID, models.MovementExpense, now.AddDate(0, 0, 20), "999999"))
	// Settled movements never project.
	paid := pendingMovement(projectID, models.MovementExpense, now.AddDate(0, 0, 1), "111111")
	paid.Status = models.StatusPaid
	add(paid)

	svc := newTestHorizon(store, now)
	bucket, err := svc.PendingByHorizon(context.Background(), projectID, 7)
	require.NoError(t, err)

	assert.True(t, bucket.Incoming.Equal(dec("1500000")), "incoming = %s", bucket.Incoming)
	assert.True(t, bucket.Outgoing.Equal(dec("500000")), "outgoing = %s", bucket.Outgoing)
	assert.True(t, bucket.Net.Equal(dec("1000000")), "net = %s", bucket.Net)
}

func TestPendingByHorizonWindowIsInclusiveOfToday(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	now := time.Date(2026, 6, 1, 23, 50, 0, 0, time.UTC)
	store := newFakeMovementStore()

	// Due earlier today: still inside the window even late in the day.
	m := pendingMovement(projectID, models.MovementExpense, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), "1000")
	store.movements[m.ID] = m

	svc := newTestHorizon(store, now)
	bucket, err := svc.PendingByHorizon(context.Background(), projectID, 7)
	require.NoError(t, err)
	assert.True(t, bucket.Outgoing.Equal(dec("1000")))
}

func TestPendingMatrixCoversFixedHorizons(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeMovementStore()
	add := func(days int, amount string) {
		m := pendingMovement(projectID, models.MovementExpense, now.AddDate(0, 0, days), amount)
		store.movements[m.ID] = m
	}
	add(5, "100")  // lands in every horizon
	add(25, "200") // 30/60/90
	add(50, "400") // 60/90
	add(85, "800") // 90 only

	svc := newTestHorizon(store, now)
	matrix, err := svc.PendingMatrix(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, matrix, 4)

	assert.True(t, matrix[7].Outgoing.Equal(dec("100")))
	assert.True(t, matrix[30].Outgoing.Equal(dec("300")))
	assert.True(t, matrix[60].Outgoing.Equal(dec("700")))
	assert.True(t, matrix[90].Outgoing.Equal(dec("1500")))
}

func TestPendingDetailSortedSoonestFirst(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeMovementStore()
	add := func(days int, amount string) {
		m := pendingMovement(projectID, models.MovementExpense, now.AddDate(0, 0, days), amount)
		store.movements[m.ID] = m
	}
	add(9, "300")
	add(1, "100")
	add(4, "200")
	income := pendingMovement(projectID, models.MovementIncome, now.AddDate(0, 0, 2), "999")
	store.movements[income.ID] = income

	svc := newTestHorizon(store, now)
	detail, err := svc.PendingDetailByHorizon(context.Background(), projectID, 30, models.HorizonOutgoing)
	require.NoError(t, err)
	require.Len(t, detail, 3, "incoming movements are excluded from the outgoing drill-down")

	for i := 1; i < len(detail); i++ {
		assert.False(t, detail[i].Date.Before(detail[i-1].Date), "detail must be sorted by ascending date")
	}
}
