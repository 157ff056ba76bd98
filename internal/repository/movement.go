package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
)

const movementColumns = `
	id, project_id, partida_id, account_id, provider_id, client_id, investor_id,
	type, status, description, date, currency, face_amount, vat_included,
	vat_rate_percent, fx_rate, fx_date, net_amount, vat_amount, total_amount,
	amount_in_base, amount_original, receipt_note, attachment_url, created_at, updated_at`

// CreateMovement inserts a movement with its derived amounts and pinned
// fx rate.
func (r *Repository) CreateMovement(ctx context.Context, m *models.Movement) error {
	query := `
		INSERT INTO obra.movements (
			id, project_id, partida_id, account_id, provider_id, client_id, investor_id,
			type, status, description, date, currency, face_amount, vat_included,
			vat_rate_percent, fx_rate, fx_date, net_amount, vat_amount, total_amount,
			amount_in_base, amount_original, receipt_note, attachment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.ProjectID, uuidOrNil(m.PartidaID), m.AccountID, m.ProviderID, m.ClientID, m.InvestorID,
		m.Type, m.Status, m.Description, m.Date, m.Currency, m.FaceAmount, m.VatIncluded,
		m.VatRatePercent, decimalOrNil(m.FxRate), m.FxDate, m.NetAmount, m.VatAmount, m.TotalAmount,
		m.AmountInBase, decimalOrNil(m.AmountOriginal), m.ReceiptNote, m.AttachmentURL,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create movement: %w", err)
	}
	return nil
}

// UpdateMovement rewrites a movement in place.
func (r *Repository) UpdateMovement(ctx context.Context, m *models.Movement) error {
	query := `
		UPDATE obra.movements SET
			partida_id = $2, account_id = $3, provider_id = $4, client_id = $5,
			investor_id = $6, type = $7, status = $8, description = $9, date = $10,
			currency = $11, face_amount = $12, vat_included = $13, vat_rate_percent = $14,
			fx_rate = $15, fx_date = $16, net_amount = $17, vat_amount = $18,
			total_amount = $19, amount_in_base = $20, amount_original = $21,
			receipt_note = $22, attachment_url = $23, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		m.ID, uuidOrNil(m.PartidaID), m.AccountID, m.ProviderID, m.ClientID, m.InvestorID,
		m.Type, m.Status, m.Description, m.Date, m.Currency, m.FaceAmount, m.VatIncluded,
		m.VatRatePercent, decimalOrNil(m.FxRate), m.FxDate, m.NetAmount, m.VatAmount,
		m.TotalAmount, m.AmountInBase, decimalOrNil(m.AmountOriginal), m.ReceiptNote, m.AttachmentURL,
	).Scan(&m.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("movement not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update movement: %w", err)
	}
	return nil
}

// DeleteMovement removes a movement.
func (r *Repository) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM obra.movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("movement not found")
	}
	return nil
}

// GetMovement retrieves a movement by id.
func (r *Repository) GetMovement(ctx context.Context, id uuid.UUID) (*models.Movement, error) {
	query := `SELECT` + movementColumns + ` FROM obra.movements WHERE id = $1`
	m, err := scanMovement(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("movement not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}
	return m, nil
}

// ListMovements returns movements matching the filter, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.Movement, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.ProjectID != nil {
		add("project_id = $%d", *filter.ProjectID)
	}
	if filter.PartidaID != nil {
		add("partida_id = $%d", *filter.PartidaID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Type != nil {
		add("type = $%d", *filter.Type)
	}
	if filter.DateFrom != nil {
		add("date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("date <= $%d", *filter.DateTo)
	}

	query := `SELECT` + movementColumns + ` FROM obra.movements`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListPendingInWindow returns PENDING movements for a project dated
// within [from, to].
func (r *Repository) ListPendingInWindow(ctx context.Context, projectID uuid.UUID, from, to time.Time) ([]models.Movement, error) {
	query := `SELECT` + movementColumns + `
		FROM obra.movements
		WHERE project_id = $1 AND status = $2 AND date >= $3 AND date <= $4
		ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, query, projectID, models.StatusPending, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovement(row rowScanner) (*models.Movement, error) {
	m := &models.Movement{}
	var (
		partidaID      uuid.NullUUID
		accountID      sql.NullInt64
		providerID     sql.NullInt64
		clientID       sql.NullInt64
		investorID     sql.NullInt64
		fxRate         decimal.NullDecimal
		fxDate         sql.NullTime
		amountOriginal decimal.NullDecimal
		receiptNote    sql.NullString
		attachmentURL  sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.ProjectID, &partidaID, &accountID, &providerID, &clientID, &investorID,
		&m.Type, &m.Status, &m.Description, &m.Date, &m.Currency, &m.FaceAmount, &m.VatIncluded,
		&m.VatRatePercent, &fxRate, &fxDate, &m.NetAmount, &m.VatAmount, &m.TotalAmount,
		&m.AmountInBase, &amountOriginal, &receiptNote, &attachmentURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if partidaID.Valid {
		m.PartidaID = &partidaID.UUID
	}
	if accountID.Valid {
		m.AccountID = &accountID.Int64
	}
	if providerID.Valid {
		m.ProviderID = &providerID.Int64
	}
	if clientID.Valid {
		m.ClientID = &clientID.Int64
	}
	if investorID.Valid {
		m.InvestorID = &investorID.Int64
	}
	if fxRate.Valid {
		m.FxRate = &fxRate.Decimal
	}
	if fxDate.Valid {
		m.FxDate = &fxDate.Time
	}
	if amountOriginal.Valid {
		m.AmountOriginal = &amountOriginal.Decimal
	}
	m.ReceiptNote = receiptNote.String
	m.AttachmentURL = attachmentURL.String
	return m, nil
}

func collectMovements(rows *sql.Rows) ([]models.Movement, error) {
	var movements []models.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return movements, nil
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
