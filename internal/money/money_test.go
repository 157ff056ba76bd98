package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLineVatIncluded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		face      string
		rate      string
		wantNet   string
		wantVat   string
		wantTotal string
	}{
		{"standard 21", "1210", "21", "1000", "210", "1210"},
		{"reduced 10.5", "1105", "10.5", "1000", "105", "1105"},
		{"increased 27", "1270", "27", "1000", "270", "1270"},
		{"zero rate short-circuit", "500", "0", "500", "0", "500"},
		{"zero face", "0", "21", "0", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeLine(LineInput{
				FaceAmount:     dec(tc.face),
				VatRatePercent: dec(tc.rate),
				VatIncluded:    true,
				Money:          Base(),
			}).Rounded()

			if !got.Net.Equal(dec(tc.wantNet)) {
				t.Errorf("net = %s, want %s", got.Net, tc.wantNet)
			}
			if !got.Vat.Equal(dec(tc.wantVat)) {
				t.Errorf("vat = %s, want %s", got.Vat, tc.wantVat)
			}
			if !got.Total.Equal(dec(tc.wantTotal)) {
				t.Errorf("total = %s, want %s", got.Total, tc.wantTotal)
			}
		})
	}
}

func TestComputeLineVatExcluded(t *testing.T) {
	t.Parallel()

	got := ComputeLine(LineInput{
		FaceAmount:     dec("1000"),
		VatRatePercent: dec("21"),
		VatIncluded:    false,
		Money:          Base(),
	}).Rounded()

	if !got.Net.Equal(dec("1000")) || !got.Vat.Equal(dec("210")) || !got.Total.Equal(dec("1210")) {
		t.Fatalf("got net=%s vat=%s total=%s, want 1000/210/1210", got.Net, got.Vat, got.Total)
	}
}

func TestComputeLineNetPlusVatEqualsTotal(t *testing.T) {
	t.Parallel()

	// The invariant must hold at full precision across awkward inputs,
	// with and without VAT included.
	faces := []string{"0.01", "1", "333.33", "1210", "99999.99", "123456.78"}
	rates := []string{"0", "10.5", "21", "27", "3.7"}

	for _, f := range faces {
		for _, r := range rates {
			for _, included := range []bool{true, false} {
				got := ComputeLine(LineInput{
					FaceAmount:     dec(f),
					VatRatePercent: dec(r),
					VatIncluded:    included,
					Money:          Base(),
				})
				if !got.Net.Add(got.Vat).Equal(got.Total) {
					t.Errorf("face=%s rate=%s included=%v: net+vat=%s, total=%s",
						f, r, included, got.Net.Add(got.Vat), got.Total)
				}
			}
		}
	}
}

func TestComputeLineVatRoundTrip(t *testing.T) {
	t.Parallel()

	// Deriving net from total with vatIncluded=true, then rebuilding
	// total from that net, must agree within a cent after rounding.
	tolerance := dec("0.01")
	for _, f := range []string{"1210", "777.77", "0.03", "150000"} {
		for _, r := range []string{"10.5", "21", "27"} {
			inc := ComputeLine(LineInput{
				FaceAmount: dec(f), VatRatePercent: dec(r), VatIncluded: true, Money: Base(),
			}).Rounded()
			rebuilt := inc.Net.Mul(decimal.NewFromInt(1).Add(dec(r).Div(decimal.NewFromInt(100)))).Round(2)
			if rebuilt.Sub(inc.Total).Abs().GreaterThan(tolerance) {
				t.Errorf("face=%s rate=%s: rebuilt total %s differs from %s by more than 0.01",
					f, r, rebuilt, inc.Total)
			}
		}
	}
}

func TestComputeLineBaseCurrency(t *testing.T) {
	t.Parallel()

	got := ComputeLine(LineInput{
		FaceAmount:     dec("1210"),
		VatRatePercent: dec("21"),
		VatIncluded:    true,
		Money:          Base(),
	})
	if got.AmountOriginal != nil {
		t.Errorf("amountOriginal = %s, want nil for ARS", got.AmountOriginal)
	}
	if !got.AmountInBase.Equal(got.Total) {
		t.Errorf("amountInBase = %s, want total %s", got.AmountInBase, got.Total)
	}
}

func TestComputeLineForeignCurrency(t *testing.T) {
	t.Parallel()

	quoted := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	got := ComputeLine(LineInput{
		FaceAmount:     dec("1210"),
		VatRatePercent: dec("21"),
		VatIncluded:    true,
		Money:          Foreign(USD, dec("1500"), &quoted),
	}).Rounded()

	if got.AmountOriginal == nil || !got.AmountOriginal.Equal(dec("1210")) {
		t.Fatalf("amountOriginal = %v, want 1210", got.AmountOriginal)
	}
	if !got.AmountInBase.Equal(dec("1815000")) {
		t.Errorf("amountInBase = %s, want 1815000", got.AmountInBase)
	}
}

func TestComputeLineForeignRatePending(t *testing.T) {
	t.Parallel()

	// Missing rate must not error; base amount stays at zero until the
	// user supplies one.
	got := ComputeLine(LineInput{
		FaceAmount:     dec("100"),
		VatRatePercent: dec("21"),
		VatIncluded:    false,
		Money:          Foreign(EUR, decimal.Zero, nil),
	})
	if !got.AmountInBase.IsZero() {
		t.Errorf("amountInBase = %s, want 0 while rate is pending", got.AmountInBase)
	}
	if got.AmountOriginal == nil || !got.AmountOriginal.Equal(got.Total) {
		t.Errorf("amountOriginal = %v, want total %s", got.AmountOriginal, got.Total)
	}
}

func TestComputeLineCoercesInvalidInput(t *testing.T) {
	t.Parallel()

	got := ComputeLine(LineInput{
		FaceAmount:     dec("-50"),
		VatRatePercent: dec("-21"),
		VatIncluded:    false,
		Money:          Base(),
	})
	if !got.Net.IsZero() || !got.Vat.IsZero() || !got.Total.IsZero() {
		t.Errorf("negative inputs not coerced to zero: net=%s vat=%s total=%s", got.Net, got.Vat, got.Total)
	}
}

func TestComputeLineIdempotent(t *testing.T) {
	t.Parallel()

	in := LineInput{
		FaceAmount:     dec("1234.56"),
		VatRatePercent: dec("10.5"),
		VatIncluded:    true,
		Money:          Foreign(USD, dec("1471.25"), nil),
	}
	first := ComputeLine(in)
	second := ComputeLine(in)

	if !first.Net.Equal(second.Net) || !first.Vat.Equal(second.Vat) ||
		!first.Total.Equal(second.Total) || !first.AmountInBase.Equal(second.AmountInBase) {
		t.Error("repeated calls with identical input produced different results")
	}
}
