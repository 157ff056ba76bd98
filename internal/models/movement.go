package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a financial movement.
type MovementType string

const (
	MovementExpense            MovementType = "EXPENSE"
	MovementIncome             MovementType = "INCOME"
	MovementInvestmentReceived MovementType = "INVESTMENT_RECEIVED"
	MovementInvestmentReturn   MovementType = "INVESTMENT_RETURN"
)

// MovementStatus is the lifecycle state of a movement.
type MovementStatus string

const (
	StatusPending   MovementStatus = "PENDING"
	StatusPaid      MovementStatus = "PAID"
	StatusCancelled MovementStatus = "CANCELLED"
	StatusConfirmed MovementStatus = "CONFIRMED"
)

// Movement represents a single financial movement (expense, income,
// investor contribution or investor return) within a project.
//
// Monetary fields net/vat/total are in the movement's own currency;
// AmountInBase is always in ARS. When the currency is foreign the FX
// rate used at entry time is pinned in FxRate/FxDate so historical
// records survive later rate changes.
type Movement struct {
	ID             uuid.UUID        `json:"id"`
	ProjectID      uuid.UUID        `json:"project_id"`
	PartidaID      *uuid.UUID       `json:"partida_id,omitempty"`
	AccountID      *int64           `json:"account_id,omitempty"`
	ProviderID     *int64           `json:"provider_id,omitempty"`
	ClientID       *int64           `json:"client_id,omitempty"`
	InvestorID     *int64           `json:"investor_id,omitempty"`
	Type           MovementType     `json:"type"`
	Status         MovementStatus   `json:"status"`
	Description    string           `json:"description"`
	Date           time.Time        `json:"date"`
	Currency       string           `json:"currency"`
	FaceAmount     decimal.Decimal  `json:"face_amount"`
	VatIncluded    bool             `json:"vat_included"`
	VatRatePercent decimal.Decimal  `json:"vat_rate_percent"`
	FxRate         *decimal.Decimal `json:"fx_rate,omitempty"`
	FxDate         *time.Time       `json:"fx_date,omitempty"`
	NetAmount      decimal.Decimal  `json:"net_amount"`
	VatAmount      decimal.Decimal  `json:"vat_amount"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	AmountInBase   decimal.Decimal  `json:"amount_in_base"`
	AmountOriginal *decimal.Decimal `json:"amount_original,omitempty"`
	ReceiptNote    string           `json:"receipt_note,omitempty"`
	AttachmentURL  string           `json:"attachment_url,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsIncoming reports whether the movement brings money into the project
// (incomes and investor contributions) as opposed to taking it out.
func (m *Movement) IsIncoming() bool {
	return m.Type == MovementIncome || m.Type == MovementInvestmentReceived
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ProjectID *uuid.UUID
	PartidaID *uuid.UUID
	Status    *MovementStatus
	Type      *MovementType
	DateFrom  *time.Time
	DateTo    *time.Time
}
