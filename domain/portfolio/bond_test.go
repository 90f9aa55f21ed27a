package portfolio

import (
	"errors"
	"testing"
	"time"

	"finmarket/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBond(t *testing.T) *Bond {
	t.Helper()
	b, err := NewBond("nl0000102234", "Dutch State Treasury", shared.NewMoney(98_50, "EUR"), 250,
		time.Now().AddDate(10, 0, 0))
	require.NoError(t, err)
	return b
}

func TestNewBondUppercasesTicker(t *testing.T) {
	b := testBond(t)
	assert.Equal(t, "NL0000102234", b.Ticker)
	assert.Equal(t, 250, b.InterestRateBps)
}

func TestNewBondValidation(t *testing.T) {
	maturity := time.Now().AddDate(1, 0, 0)
	cases := []struct {
		name string
		make func() error
		code string
	}{
		{"missing ticker", func() error {
			_, err := NewBond("", "Issuer", shared.NewMoney(100, "EUR"), 100, maturity)
			return err
		}, "bonds.tickerRequired"},
		{"missing issuer", func() error {
			_, err := NewBond("NL01", "", shared.NewMoney(100, "EUR"), 100, maturity)
			return err
		}, "bonds.issuerRequired"},
		{"negative price", func() error {
			_, err := NewBond("NL01", "Issuer", shared.NewMoney(-1, "EUR"), 100, maturity)
			return err
		}, "bonds.price.negative"},
		{"negative rate", func() error {
			_, err := NewBond("NL01", "Issuer", shared.NewMoney(100, "EUR"), -1, maturity)
			return err
		}, "bonds.rate.negative"},
		{"past maturity", func() error {
			_, err := NewBond("NL01", "Issuer", shared.NewMoney(100, "EUR"), 100, time.Now().AddDate(-1, 0, 0))
			return err
		}, "bonds.maturityPast"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.make()
			var ruleErr *shared.DomainError
			require.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, tc.code, ruleErr.Code)
		})
	}
}

func TestBondUpdatePrice(t *testing.T) {
	b := testBond(t)

	require.NoError(t, b.UpdatePrice(shared.NewMoney(99_10, "EUR")))
	assert.Equal(t, int64(99_10), b.Price.Amount)

	assert.Error(t, b.UpdatePrice(shared.NewMoney(-5, "EUR")))
}

func TestBondMaturity(t *testing.T) {
	b := testBond(t)

	assert.False(t, b.HasMatured(time.Now()))
	assert.True(t, b.HasMatured(b.MaturityDate.Add(time.Hour)))
}
