package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ncasas/obra-service/internal/models"
)

// CatalogService prefetches the reference data movement forms need.
type CatalogService struct {
	store CatalogStore
	log   *logrus.Logger
}

// NewCatalogService wires the prefetcher.
func NewCatalogService(store CatalogStore, log *logrus.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

// Prefetch loads projects, accounts, providers and investors in
// parallel with an all-complete join: one failed branch aborts the
// whole load instead of handing the form partial catalogs.
func (s *CatalogService) Prefetch(ctx context.Context) (*models.Catalogs, error) {
	var catalogs models.Catalogs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := s.store.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("failed to load projects: %w", err)
		}
		catalogs.Projects = projects
		return nil
	})
	g.Go(func() error {
		accounts, err := s.store.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		catalogs.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		providers, err := s.store.ListCounterparties(gctx, "provider")
		if err != nil {
			return fmt.Errorf("failed to load providers: %w", err)
		}
		catalogs.Providers = providers
		return nil
	})
	g.Go(func() error {
		investors, err := s.store.ListCounterparties(gctx, "investor")
		if err != nil {
			return fmt.Errorf("failed to load investors: %w", err)
		}
		catalogs.Investors = investors
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Debugf("Catalogs prefetched: %d projects, %d accounts, %d providers, %d investors",
		len(catalogs.Projects), len(catalogs.Accounts), len(catalogs.Providers), len(catalogs.Investors))
	return &catalogs, nil
}
