package portfolio

import (
	"strings"
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// BondEntityName is the registry name for cache policies and audit entries.
const BondEntityName = "Bond"

// Bond is a fixed-income asset. The interest rate is stored in basis points
// to keep the whole model integer-based.
type Bond struct {
	shared.EntityBase
	Ticker          string       `json:"ticker"`
	IssuerName      string       `json:"issuer_name"`
	Price           shared.Money `json:"price"`
	InterestRateBps int          `json:"interest_rate_bps"`
	MaturityDate    time.Time    `json:"maturity_date"`
}

// NewBond creates a bond. Tickers are stored uppercase.
func NewBond(ticker, issuerName string, price shared.Money, interestRateBps int, maturityDate time.Time) (*Bond, error) {
	if ticker == "" {
		return nil, shared.NewRuleError("bonds.tickerRequired", "a bond needs a ticker")
	}
	if issuerName == "" {
		return nil, shared.NewRuleError("bonds.issuerRequired", "a bond needs an issuer")
	}
	if price.Amount < 0 {
		return nil, shared.NewRuleError("bonds.price.negative", "price cannot be negative", price.Amount)
	}
	if interestRateBps < 0 {
		return nil, shared.NewRuleError("bonds.rate.negative", "interest rate cannot be negative", interestRateBps)
	}
	if maturityDate.IsZero() || !maturityDate.After(time.Now()) {
		return nil, shared.NewRuleError("bonds.maturityPast", "maturity must lie in the future")
	}
	return &Bond{
		EntityBase:      shared.EntityBase{ID: uuid.New()},
		Ticker:          strings.ToUpper(ticker),
		IssuerName:      issuerName,
		Price:           price,
		InterestRateBps: interestRateBps,
		MaturityDate:    maturityDate,
	}, nil
}

// UpdatePrice replaces the quoted price.
func (b *Bond) UpdatePrice(price shared.Money) error {
	if price.Amount < 0 {
		return shared.NewRuleError("bonds.price.negative", "price cannot be negative", price.Amount)
	}
	b.Price = price
	return nil
}

// HasMatured reports whether the bond reached its maturity date.
func (b *Bond) HasMatured(now time.Time) bool {
	return !now.Before(b.MaturityDate)
}

var _ shared.AggregateRoot = (*Bond)(nil)
