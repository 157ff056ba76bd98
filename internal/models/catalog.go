package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a construction project, the top of the ownership tree.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account is a cash/bank account movements are paid from or collected into.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counterparty is a provider, client or investor referenced by movements.
// Kind discriminates; exactly one kind applies per movement type.
type Counterparty struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"` // "provider" | "client" | "investor"
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Catalogs bundles the reference data every movement form needs,
// loaded in one parallel prefetch.
type Catalogs struct {
	Projects  []Project      `json:"projects"`
	Accounts  []Account      `json:"accounts"`
	Providers []Counterparty `json:"providers"`
	Investors []Counterparty `json:"investors"`
}
