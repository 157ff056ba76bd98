package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type fakeMovementStore struct {
	movements map[uuid.UUID]models.Movement
	createErr error
	updateErr error
	listErr   error
	created   int
	updated   int
}

func newFakeMovementStore() *fakeMovementStore {
	return &fakeMovementStore{movements: make(map[uuid.UUID]models.Movement)}
}

func (f *fakeMovementStore) CreateMovement(_ context.Context, m *models.Movement) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.movements[m.ID] = *m
	return nil
}

func (f *fakeMovementStore) UpdateMovement(_ context.Context, m *models.Movement) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.movements[m.ID]; !ok {
		return errors.New("movement not found")
	}
	f.updated++
	m.UpdatedAt = time.Now()
	f.movements[m.ID] = *m
	return nil
}

func (f *fakeMovementStore) DeleteMovement(_ context.Context, id uuid.UUID) error {
	if _, ok := f.movements[id]; !ok {
		return errors.New("movement not found")
	}
	delete(f.movements, id)
	return nil
}

func (f *fakeMovementStore) GetMovement(_ context.Context, id uuid.UUID) (*models.Movement, error) {
	m, ok := f.movements[id]
	if !ok {
		return nil, errors.New("movement not found")
	}
	return &m, nil
}

func (f *fakeMovementStore) ListMovements(_ context.Context, filter models.MovementFilter) ([]models.Movement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Movement
	for _, m := range f.movements {
		if filter.ProjectID != nil && m.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.DateTo != nil && m.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMovementStore) ListPendingInWindow(_ context.Context, projectID uuid.UUID, from, to time.Time) ([]models.Movement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Movement
	for _, m := range f.movements {
		if m.ProjectID != projectID || m.Status != models.StatusPending {
			continue
		}
		if m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fakeRateSource struct {
	rate  decimal.Decimal
	asOf  time.Time
	err   error
	calls int
}

func (f *fakeRateSource) GetRate(_ context.Context, _ string) (Rate, error) {
	f.calls++
	if f.err != nil {
		return Rate{}, f.err
	}
	return Rate{Rate: f.rate, AsOf: f.asOf}, nil
}

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, _ string, _ []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeBudgetStore struct {
	partidas map[uuid.UUID]models.Partida
	subs     map[uuid.UUID]models.SubPartida

	// movements backs cost recalculation when linked.
	movements *fakeMovementStore

	listErr       error
	distributeErr error
	updateSubErr  error
	recalcErr     error
}

func newFakeBudgetStore() *fakeBudgetStore {
	return &fakeBudgetStore{
		partidas: make(map[uuid.UUID]models.Partida),
		subs:     make(map[uuid.UUID]models.SubPartida),
	}
}

func (f *fakeBudgetStore) addPartida(p models.Partida) models.Partida {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.partidas[p.ID] = p
	return p
}

func (f *fakeBudgetStore) addSub(sp models.SubPartida) models.SubPartida {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	f.subs[sp.ID] = sp
	return sp
}

func (f *fakeBudgetStore) GetPartida(_ context.Context, id uuid.UUID) (*models.Partida, error) {
	p, ok := f.partidas[id]
	if !ok {
		return nil, errors.New("partida not found")
	}
	return &p, nil
}

func (f *fakeBudgetStore) ListPartidas(_ context.Context, projectID uuid.UUID) ([]models.Partida, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Partida
	for _, p := range f.partidas {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBudgetStore) UpdatePartidaAggregates(_ context.Context, id uuid.UUID, budget decimal.Decimal, progress int, status models.BudgetStatus) error {
	p, ok := f.partidas[id]
	if !ok {
		return errors.New("partida not found")
	}
	p.Budget = budget
	p.ProgressPercent = progress
	p.Status = status
	f.partidas[id] = p
	return nil
}

func (f *fakeBudgetStore) GetSubPartida(_ context.Context, id uuid.UUID) (*models.SubPartida, error) {
	sp, ok := f.subs[id]
	if !ok {
		return nil, errors.New("subpartida not found")
	}
	return &sp, nil
}

func (f *fakeBudgetStore) ListSubPartidas(_ context.Context, partidaID uuid.UUID) ([]models.SubPartida, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.SubPartida
	for _, sp := range f.subs {
		if sp.PartidaID == partidaID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (f *fakeBudgetStore) UpdateSubPartida(_ context.Context, id uuid.UUID, upd models.SubPartidaUpdate) (*models.SubPartida, error) {
	if f.updateSubErr != nil {
		return nil, f.updateSubErr
	}
	sp, ok := f.subs[id]
	if !ok {
		return nil, errors.New("subpartida not found")
	}
	if upd.Name != nil {
		sp.Name = *upd.Name
	}
	if upd.Budget != nil {
		sp.Budget = *upd.Budget
	}
	if upd.ProgressPercent != nil {
		sp.ProgressPercent = *upd.ProgressPercent
	}
	f.subs[id] = sp
	return &sp, nil
}

func (f *fakeBudgetStore) DeleteSubPartida(_ context.Context, id uuid.UUID) error {
	if _, ok := f.subs[id]; !ok {
		return errors.New("subpartida not found")
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeBudgetStore) DistributeBudget(_ context.Context, partidaID uuid.UUID, perChild, total decimal.Decimal) error {
	if f.distributeErr != nil {
		return f.distributeErr
	}
	for id, sp := range f.subs {
		if sp.PartidaID == partidaID {
			sp.Budget = perChild
			f.subs[id] = sp
		}
	}
	p, ok := f.partidas[partidaID]
	if !ok {
		return errors.New("partida not found")
	}
	p.Budget = total
	f.partidas[partidaID] = p
	return nil
}

func (f *fakeBudgetStore) RecalculatePartidaCost(_ context.Context, partidaID uuid.UUID) (decimal.Decimal, error) {
	if f.recalcErr != nil {
		return decimal.Zero, f.recalcErr
	}
	p, ok := f.partidas[partidaID]
	if !ok {
		return decimal.Zero, errors.New("partida not found")
	}
	cost := decimal.Zero
	if f.movements != nil {
		for _, m := range f.movements.movements {
			if m.PartidaID == nil || *m.PartidaID != partidaID {
				continue
			}
			if m.Type != models.MovementExpense || m.Status == models.StatusCancelled {
				continue
			}
			cost = cost.Add(m.AmountInBase)
		}
	}
	p.AccumulatedCost = cost
	f.partidas[partidaID] = p
	return cost, nil
}

type fakeCatalogStore struct {
	projects    []models.Project
	accounts    []models.Account
	providers   []models.Counterparty
	investors   []models.Counterparty
	projectsErr error
	accountsErr error
}

func (f *fakeCatalogStore) ListProjects(_ context.Context) ([]models.Project, error) {
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return f.projects, nil
}

func (f *fakeCatalogStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts, nil
}

func (f *fakeCatalogStore) ListCounterparties(_ context.Context, kind string) ([]models.Counterparty, error) {
	if kind == "provider" {
		return f.providers, nil
	}
	return f.investors, nil
}

type fakeAlerts struct {
	alerted []uuid.UUID
	err     error
}

func (f *fakeAlerts) OverBudgetAlert(_ context.Context, p *models.Partida) error {
	f.alerted = append(f.alerted, p.ID)
	return f.err
}
