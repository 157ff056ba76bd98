package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/models"
	"github.com/ncasas/obra-service/internal/money"
)

// DraftState tracks a form session through its lifecycle.
type DraftState string

const (
	DraftEmpty      DraftState = "EMPTY"
	DraftEditing    DraftState = "EDITING"
	DraftValidating DraftState = "VALIDATING"
	DraftSubmitting DraftState = "SUBMITTING"
	DraftDone       DraftState = "DONE"
	DraftFailed     DraftState = "FAILED"
)

// Attachment is a receipt blob to be uploaded at submission time.
type Attachment struct {
	Filename string
	Data     []byte
}

// MovementController owns the mutable draft of one movement form
// session. Every relevant field edit re-runs the line calculator, so
// the derived amounts the caller reads are never stale. One controller
// per session; drafts are never shared across sessions.
type MovementController struct {
	store   MovementStore
	rates   RateSource
	uploads AttachmentStore
	costs   PartidaCostRefresher
	log     *logrus.Logger

	draft           models.Movement
	state           DraftState
	existing        bool       // editing a persisted movement
	userRate        bool       // the user typed the fx rate; prefill must not overwrite
	originalPartida *uuid.UUID // partida linked when the session started
}

// NewMovementController wires a controller with its collaborators.
// uploads may be nil when the caller never submits attachments; costs
// may be nil when cost roll-up is handled elsewhere.
func NewMovementController(store MovementStore, rates RateSource, uploads AttachmentStore, costs PartidaCostRefresher, log *logrus.Logger) *MovementController {
	return &MovementController{
		store:   store,
		rates:   rates,
		uploads: uploads,
		costs:   costs,
		log:     log,
		state:   DraftEmpty,
	}
}

// StartNew begins a draft for a not-yet-persisted movement.
func (c *MovementController) StartNew(projectID uuid.UUID, mtype models.MovementType) {
	c.draft = models.Movement{
		ID:        uuid.New(),
		ProjectID: projectID,
		Type:      mtype,
		Status:    models.StatusPending,
		Date:      time.Now(),
		Currency:  money.ARS,
	}
	c.existing = false
	c.userRate = false
	c.originalPartida = nil
	c.state = DraftEditing
	c.recompute()
}

// StartEdit begins a draft over an already persisted movement. The
// stored fx rate is preserved until the user changes currency or
// explicitly refreshes it.
func (c *MovementController) StartEdit(m *models.Movement) {
	c.draft = *m
	c.existing = true
	c.userRate = m.FxRate != nil
	c.originalPartida = nil
	if m.PartidaID != nil {
		id := *m.PartidaID
		c.originalPartida = &id
	}
	c.state = DraftEditing
	c.recompute()
}

// State returns the session's lifecycle state.
func (c *MovementController) State() DraftState { return c.state }

// Draft returns a snapshot of the current draft with derived amounts.
func (c *MovementController) Draft() models.Movement { return c.draft }

// SetDescription updates the description. No recompute needed.
func (c *MovementController) SetDescription(desc string) {
	c.draft.Description = desc
	c.edited()
}

// SetDate updates the movement date.
func (c *MovementController) SetDate(d time.Time) {
	c.draft.Date = d
	c.edited()
}

// SetStatus updates the lifecycle status of the draft.
func (c *MovementController) SetStatus(s models.MovementStatus) {
	c.draft.Status = s
	c.edited()
}

// SetAccount points the movement at a cash/bank account.
func (c *MovementController) SetAccount(id int64) {
	c.draft.AccountID = &id
	c.edited()
}

// SetCounterparty assigns the provider/client/investor reference for
// the draft's movement type.
func (c *MovementController) SetCounterparty(id int64) {
	switch c.draft.Type {
	case models.MovementExpense:
		c.draft.ProviderID = &id
	case models.MovementIncome:
		c.draft.ClientID = &id
	case models.MovementInvestmentReceived, models.MovementInvestmentReturn:
		c.draft.InvestorID = &id
	}
	c.edited()
}

// SetPartida links the movement to a budget line item.
func (c *MovementController) SetPartida(id uuid.UUID) {
	c.draft.PartidaID = &id
	c.edited()
}

// SetReceiptNote updates the free-form receipt note.
func (c *MovementController) SetReceiptNote(note string) {
	c.draft.ReceiptNote = note
	c.edited()
}

// SetFaceAmount updates the amount as typed and recomputes.
func (c *MovementController) SetFaceAmount(amount decimal.Decimal) {
	c.draft.FaceAmount = amount
	c.edited()
	c.recompute()
}

// SetVatRate updates the VAT rate percent and recomputes.
func (c *MovementController) SetVatRate(percent decimal.Decimal) {
	c.draft.VatRatePercent = percent
	c.edited()
	c.recompute()
}

// SetVatIncluded flips the "amount includes VAT" flag and recomputes.
func (c *MovementController) SetVatIncluded(included bool) {
	c.draft.VatIncluded = included
	c.edited()
	c.recompute()
}

// SetFxRate records a user-typed exchange rate and recomputes. A
// user-typed rate is never overwritten by a later prefill.
func (c *MovementController) SetFxRate(rate decimal.Decimal) {
	now := time.Now()
	c.draft.FxRate = &rate
	c.draft.FxDate = &now
	c.userRate = true
	c.edited()
	c.recompute()
}

// SetCurrency switches the draft's currency, applying the side effects
// of each direction. Switching to a foreign currency on a new draft
// asks the rate source for a current quote; lookup failure degrades to
// a blank rate the user fills in manually.
func (c *MovementController) SetCurrency(ctx context.Context, currency string) {
	if currency == c.draft.Currency {
		return
	}
	c.draft.Currency = currency

	if currency == money.ARS {
		// Foreign → base: the fx pin no longer applies.
		c.draft.FxRate = nil
		c.draft.FxDate = nil
		c.draft.AmountOriginal = nil
		c.userRate = false
	} else {
		// Base → foreign (or foreign → foreign): the stored pin is for
		// the previous currency, drop it and prefill for new drafts.
		c.draft.FxRate = nil
		c.draft.FxDate = nil
		c.userRate = false
		if !c.existing {
			c.prefillRate(ctx, currency)
		}
	}
	c.edited()
	c.recompute()
}

// RefreshRate re-quotes the fx rate on explicit user request,
// overwriting whatever is pinned.
func (c *MovementController) RefreshRate(ctx context.Context) {
	if c.draft.Currency == money.ARS {
		return
	}
	c.userRate = false
	c.prefillRate(ctx, c.draft.Currency)
	c.recompute()
}

func (c *MovementController) prefillRate(ctx context.Context, currency string) {
	if c.rates == nil || c.userRate {
		return
	}
	quote, err := c.rates.GetRate(ctx, currency)
	if err != nil {
		// Degrade: leave the field blank for manual entry.
		c.log.Warnf("FX lookup for %s failed, leaving rate blank: %v", currency, err)
		return
	}
	rate := quote.Rate
	asOf := quote.AsOf
	c.draft.FxRate = &rate
	c.draft.FxDate = &asOf
}

func (c *MovementController) edited() {
	switch c.state {
	case DraftEmpty, DraftValidating, DraftFailed, DraftDone:
		c.state = DraftEditing
	}
}

// recompute re-derives net/vat/total and the base-currency amount from
// the current draft fields. Rounding commits here, the draft being the
// state the caller reads back.
func (c *MovementController) recompute() {
	m := money.Base()
	if c.draft.Currency != money.ARS {
		rate := decimal.Zero
		if c.draft.FxRate != nil {
			rate = *c.draft.FxRate
		}
		m = money.Foreign(c.draft.Currency, rate, c.draft.FxDate)
	}
	b := money.ComputeLine(money.LineInput{
		FaceAmount:     c.draft.FaceAmount,
		VatRatePercent: c.draft.VatRatePercent,
		VatIncluded:    c.draft.VatIncluded,
		Money:          m,
	}).Rounded()

	c.draft.NetAmount = b.Net
	c.draft.VatAmount = b.Vat
	c.draft.TotalAmount = b.Total
	c.draft.AmountInBase = b.AmountInBase
	c.draft.AmountOriginal = b.AmountOriginal
}

// Validate checks the draft against the submission rules, returning the
// first violated rule. Validation never reaches the store.
func (c *MovementController) Validate() error {
	c.state = DraftValidating
	err := c.validate()
	if err != nil {
		c.state = DraftEditing
	}
	return err
}

func (c *MovementController) validate() error {
	if strings.TrimSpace(c.draft.Description) == "" {
		return &ValidationError{Field: "description", Reason: "description is required"}
	}
	if !c.draft.FaceAmount.IsPositive() {
		return &ValidationError{Field: "face_amount", Reason: "amount must be greater than zero"}
	}
	switch c.draft.Type {
	case models.MovementExpense:
		if c.draft.AccountID == nil {
			return &ValidationError{Field: "account_id", Reason: "account required for expense movements"}
		}
	case models.MovementInvestmentReceived, models.MovementInvestmentReturn:
		if c.draft.InvestorID == nil {
			return &ValidationError{Field: "investor_id", Reason: "investor required for investment movements"}
		}
	}
	if c.draft.Currency != money.ARS {
		if c.draft.FxRate == nil || !c.draft.FxRate.IsPositive() {
			return &ValidationError{Field: "fx_rate", Reason: "valid exchange rate required for foreign currency"}
		}
	}
	return nil
}

// Submit validates the draft, uploads the attachment when present, and
// persists an immutable payload snapshot. Persistence failures surface
// verbatim with the draft intact so the user can correct and resubmit;
// there is no automatic retry.
func (c *MovementController) Submit(ctx context.Context, attachment *Attachment) (*models.Movement, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.state = DraftSubmitting

	if attachment != nil {
		if c.uploads == nil {
			c.state = DraftEditing
			return nil, fmt.Errorf("attachment upload not configured")
		}
		url, err := c.uploads.Upload(ctx, attachment.Filename, attachment.Data)
		if err != nil {
			// The movement must never persist with a dangling reference
			// to a failed upload.
			c.state = DraftEditing
			return nil, fmt.Errorf("attachment upload failed: %w", err)
		}
		c.draft.AttachmentURL = url
	}

	payload := c.draft

	var err error
	if c.existing {
		err = c.store.UpdateMovement(ctx, &payload)
	} else {
		err = c.store.CreateMovement(ctx, &payload)
	}
	if err != nil {
		// FAILED returns to EDITING, never discarding user input.
		c.state = DraftEditing
		return nil, err
	}

	c.draft = payload
	c.existing = true
	c.state = DraftDone
	c.rollUpCosts(ctx, payload.PartidaID)
	c.originalPartida = payload.PartidaID
	c.log.WithFields(logrus.Fields{
		"movement": payload.ID,
		"type":     payload.Type,
		"currency": payload.Currency,
		"total":    payload.TotalAmount,
	}).Info("Movement submitted")
	return &payload, nil
}

// rollUpCosts refreshes the accumulated cost of every partida the
// submission touched: the one now linked and, when an edit moved the
// movement, the one it left. The movement is already persisted at this
// point, so a failed roll-up is logged rather than surfaced.
func (c *MovementController) rollUpCosts(ctx context.Context, current *uuid.UUID) {
	if c.costs == nil {
		return
	}
	touched := make([]uuid.UUID, 0, 2)
	if current != nil {
		touched = append(touched, *current)
	}
	if c.originalPartida != nil && (current == nil || *c.originalPartida != *current) {
		touched = append(touched, *c.originalPartida)
	}
	for _, id := range touched {
		if _, err := c.costs.RefreshPartidaCost(ctx, id); err != nil {
			c.log.Warnf("Cost roll-up for partida %s failed: %v", id, err)
		}
	}
}
