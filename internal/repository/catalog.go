package repository

import (
	"context"
	"fmt"

	"github.com/ncasas/obra-service/internal/models"
)

// ListProjects returns active projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `
		SELECT id, name, address, active, created_at, updated_at
		FROM obra.projects
		WHERE active
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	return projects, nil
}

// ListAccounts returns all cash/bank accounts.
func (r *Repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT id, name, currency, created_at, updated_at
		FROM obra.accounts
		ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

// ListCounterparties returns counterparties of one kind
// ("provider" | "client" | "investor").
func (r *Repository) ListCounterparties(ctx context.Context, kind string) ([]models.Counterparty, error) {
	query := `
		SELECT id, kind, name, tax_id, email, created_at, updated_at
		FROM obra.counterparties
		WHERE kind = $1
		ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	defer rows.Close()

	var parties []models.Counterparty
	for rows.Next() {
		var c models.Counterparty
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.TaxID, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan counterparty: %w", err)
		}
		parties = append(parties, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read counterparties: %w", err)
	}
	return parties, nil
}
