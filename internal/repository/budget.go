package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
)

// GetPartida retrieves a partida by id.
func (r *Repository) GetPartida(ctx context.Context, id uuid.UUID) (*models.Partida, error) {
	p := &models.Partida{}
	query := `
		SELECT id, project_id, name, description, budget, accumulated_cost,
		       progress_percent, status, order_index, created_at, updated_at
		FROM obra.partidas
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Description, &p.Budget, &p.AccumulatedCost,
		&p.ProgressPercent, &p.Status, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("partida not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partida: %w", err)
	}
	return p, nil
}

// ListPartidas returns a project's partidas in display order.
func (r *Repository) ListPartidas(ctx context.Context, projectID uuid.UUID) ([]models.Partida, error) {
	query := `
		SELECT id, project_id, name, description, budget, accumulated_cost,
		       progress_percent, status, order_index, created_at, updated_at
		FROM obra.partidas
		WHERE project_id = $1
		ORDER BY order_index ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partidas: %w", err)
	}
	defer rows.Close()

	var partidas []models.Partida
	for rows.Next() {
		var p models.Partida
		if err := rows.Scan(
			&p.ID, &p.ProjectID, &p.Name, &p.Description, &p.Budget, &p.AccumulatedCost,
			&p.ProgressPercent, &p.Status, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partida: %w", err)
		}
		partidas = append(partidas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read partidas: %w", err)
	}
	return partidas, nil
}

// UpdatePartidaAggregates writes the recalculated aggregate fields of a
// partida.
func (r *Repository) UpdatePartidaAggregates(ctx context.Context, id uuid.UUID, budget decimal.Decimal, progress int, status models.BudgetStatus) error {
	query := `
		UPDATE obra.partidas
		SET budget = $2, progress_percent = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, budget, progress, status)
	if err != nil {
		return fmt.Errorf("failed to update partida aggregates: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("partida not found")
	}
	return nil
}

// GetSubPartida retrieves a subpartida by id.
func (r *Repository) GetSubPartida(ctx context.Context, id uuid.UUID) (*models.SubPartida, error) {
	sp := &models.SubPartida{}
	query := `
		SELECT id, partida_id, name, budget, accumulated_cost, progress_percent,
		       order_index, created_at, updated_at
		FROM obra.subpartidas
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sp.ID, &sp.PartidaID, &sp.Name, &sp.Budget, &sp.AccumulatedCost,
		&sp.ProgressPercent, &sp.OrderIndex, &sp.CreatedAt, &sp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subpartida not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subpartida: %w", err)
	}
	return sp, nil
}

// ListSubPartidas returns a partida's children in display order.
func (r *Repository) ListSubPartidas(ctx context.Context, partidaID uuid.UUID) ([]models.SubPartida, error) {
	query := `
		SELECT id, partida_id, name, budget, accumulated_cost, progress_percent,
		       order_index, created_at, updated_at
		FROM obra.subpartidas
		WHERE partida_id = $1
		ORDER BY order_index ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, partidaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subpartidas: %w", err)
	}
	defer rows.Close()

	var subs []models.SubPartida
	for rows.Next() {
		var sp models.SubPartida
		if err := rows.Scan(
			&sp.ID, &sp.PartidaID, &sp.Name, &sp.Budget, &sp.AccumulatedCost,
			&sp.ProgressPercent, &sp.OrderIndex, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subpartida: %w", err)
		}
		subs = append(subs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subpartidas: %w", err)
	}
	return subs, nil
}

// UpdateSubPartida applies the non-nil fields of upd and returns the
// updated row.
func (r *Repository) UpdateSubPartida(ctx context.Context, id uuid.UUID, upd models.SubPartidaUpdate) (*models.SubPartida, error) {
	sp := &models.SubPartida{}
	query := `
		UPDATE obra.subpartidas
		SET name = COALESCE($2, name),
		    budget = COALESCE($3, budget),
		    progress_percent = COALESCE($4, progress_percent),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id, partida_id, name, budget, accumulated_cost, progress_percent,
		          order_index, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, id, upd.Name, decimalOrNil(upd.Budget), upd.ProgressPercent).Scan(
		&sp.ID, &sp.PartidaID, &sp.Name, &sp.Budget, &sp.AccumulatedCost,
		&sp.ProgressPercent, &sp.OrderIndex, &sp.CreatedAt, &sp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subpartida not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update subpartida: %w", err)
	}
	return sp, nil
}

// DeleteSubPartida removes a subpartida.
func (r *Repository) DeleteSubPartida(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM obra.subpartidas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subpartida: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subpartida not found")
	}
	return nil
}

// RecalculatePartidaCost recomputes a partida's accumulated cost as the
// sum of its linked, non-cancelled expense movements and persists it.
func (r *Repository) RecalculatePartidaCost(ctx context.Context, partidaID uuid.UUID) (decimal.Decimal, error) {
	var cost decimal.Decimal
	query := `
		UPDATE obra.partidas
		SET accumulated_cost = (
			SELECT COALESCE(SUM(amount_in_base), 0)
			FROM obra.movements
			WHERE partida_id = $1 AND type = 'EXPENSE' AND status <> 'CANCELLED'
		), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING accumulated_cost`
	err := r.db.QueryRowContext(ctx, query, partidaID).Scan(&cost)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("partida not found")
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recalculate partida cost: %w", err)
	}
	return cost, nil
}

// DistributeBudget writes the same budget to every child of a partida
// and the total to the partida itself in a single transaction, so a
// failure never leaves the hierarchy half-updated.
func (r *Repository) DistributeBudget(ctx context.Context, partidaID uuid.UUID, perChild, total decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE obra.subpartidas
		SET budget = $2, updated_at = CURRENT_TIMESTAMP
		WHERE partida_id = $1`, partidaID, perChild)
	if err != nil {
		return fmt.Errorf("failed to update child budgets: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE obra.partidas
		SET budget = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`, partidaID, total)
	if err != nil {
		return fmt.Errorf("failed to update parent budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit budget distribution: %w", err)
	}
	return nil
}
