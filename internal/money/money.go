// Package money implements the financial line calculator: VAT/net/total
// derivation and base-currency conversion for multi-currency movements.
// Everything here is pure and deterministic; callers re-run it on every
// field edit.
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supported currency codes. ARS is the base currency; every movement is
// ultimately valued in ARS.
const (
	ARS = "ARS"
	USD = "USD"
	EUR = "EUR"
)

var hundred = decimal.NewFromInt(100)

// Money tags an amount with its currency context. A base value carries
// no FX fields; a foreign value carries the pinned rate (currency→ARS)
// and the date it was quoted. A foreign value with a zero rate is a
// valid "rate pending" state, not an error.
type Money struct {
	Currency string
	FxRate   decimal.Decimal
	FxDate   *time.Time
}

// Base returns the ARS variant.
func Base() Money {
	return Money{Currency: ARS}
}

// Foreign returns a foreign-currency variant with a pinned rate.
func Foreign(currency string, fxRate decimal.Decimal, fxDate *time.Time) Money {
	return Money{Currency: currency, FxRate: fxRate, FxDate: fxDate}
}

// IsBase reports whether the value is denominated in ARS.
func (m Money) IsBase() bool {
	return m.Currency == "" || m.Currency == ARS
}

// HasRate reports whether a usable conversion rate is pinned.
func (m Money) HasRate() bool {
	return m.FxRate.IsPositive()
}

// LineInput is everything the calculator needs for one movement line.
type LineInput struct {
	FaceAmount     decimal.Decimal
	VatRatePercent decimal.Decimal
	VatIncluded    bool
	Money          Money
}

// LineBreakdown is the derived amounts for one movement line. Net, Vat,
// Total and AmountOriginal are in the line's own currency; AmountInBase
// is in ARS. AmountOriginal is nil for base-currency lines.
type LineBreakdown struct {
	Net            decimal.Decimal
	Vat            decimal.Decimal
	Total          decimal.Decimal
	AmountOriginal *decimal.Decimal
	AmountInBase   decimal.Decimal
}

// ComputeLine derives net/VAT/total and the base-currency equivalent for
// a single line. Invariant: Net + Vat == Total at full precision.
//
// Invalid input never produces an error: a negative face amount is
// coerced to zero, a negative VAT rate to zero, and a missing FX rate
// yields AmountInBase == 0 pending user input. Results keep full
// precision; call Rounded before committing to state or storage.
func ComputeLine(in LineInput) LineBreakdown {
	face := in.FaceAmount
	if face.IsNegative() {
		face = decimal.Zero
	}
	rate := in.VatRatePercent
	if rate.IsNegative() {
		rate = decimal.Zero
	}

	var out LineBreakdown
	switch {
	case in.VatIncluded && rate.IsZero():
		// Short-circuit: dividing by (1 + 0) is a no-op but can leave
		// -0 artifacts behind. Keep the face value untouched.
		out.Total = face
		out.Net = face
		out.Vat = decimal.Zero
	case in.VatIncluded:
		out.Total = face
		out.Net = face.Div(decimal.NewFromInt(1).Add(rate.Div(hundred)))
		out.Vat = out.Total.Sub(out.Net)
	default:
		out.Net = face
		out.Vat = face.Mul(rate.Div(hundred))
		out.Total = out.Net.Add(out.Vat)
	}

	if in.Money.IsBase() {
		out.AmountOriginal = nil
		out.AmountInBase = out.Total
		return out
	}

	original := out.Total
	out.AmountOriginal = &original
	if in.Money.HasRate() {
		out.AmountInBase = out.Total.Mul(in.Money.FxRate)
	} else {
		out.AmountInBase = decimal.Zero
	}
	return out
}

// Rounded commits the breakdown to 2 decimal places. Rounding happens
// here, at the commit point, so the net→vat→total chain never compounds
// rounding error.
func (b LineBreakdown) Rounded() LineBreakdown {
	r := LineBreakdown{
		Net:          b.Net.Round(2),
		Vat:          b.Vat.Round(2),
		Total:        b.Total.Round(2),
		AmountInBase: b.AmountInBase.Round(2),
	}
	if b.AmountOriginal != nil {
		orig := b.AmountOriginal.Round(2)
		r.AmountOriginal = &orig
	}
	return r
}
