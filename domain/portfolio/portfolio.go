package portfolio

import (
	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// Holding is one position inside a portfolio, compared by ticker.
type Holding struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"quantity"`
}

// Portfolio is an aggregate root grouping the holdings of one owner.
type Portfolio struct {
	shared.EntityBase
	Name     string    `json:"name"`
	OwnerID  string    `json:"owner_id"`
	Holdings []Holding `gorm:"serializer:json" json:"holdings"`
}

// NewPortfolio creates an empty portfolio for an owner.
func NewPortfolio(name, ownerID string) (*Portfolio, error) {
	if name == "" {
		return nil, shared.NewRuleError("portfolios.nameRequired", "a portfolio needs a name")
	}
	if ownerID == "" {
		return nil, shared.NewRuleError("portfolios.ownerRequired", "a portfolio needs an owner")
	}
	return &Portfolio{
		EntityBase: shared.EntityBase{ID: uuid.New()},
		Name:       name,
		OwnerID:    ownerID,
	}, nil
}

// AddHolding adds shares of a ticker, merging with an existing position.
func (p *Portfolio) AddHolding(ticker string, quantity int) error {
	if quantity <= 0 {
		return shared.NewRuleError("portfolios.invalidQuantity", "quantity must be positive", quantity)
	}
	for i, h := range p.Holdings {
		if h.Ticker == ticker {
			p.Holdings[i].Quantity += quantity
			return nil
		}
	}
	p.Holdings = append(p.Holdings, Holding{Ticker: ticker, Quantity: quantity})
	return nil
}

// ReduceHolding removes shares of a ticker, dropping the position when it
// reaches zero. Selling more than held violates a business rule.
func (p *Portfolio) ReduceHolding(ticker string, quantity int) error {
	if quantity <= 0 {
		return shared.NewRuleError("portfolios.invalidQuantity", "quantity must be positive", quantity)
	}
	for i, h := range p.Holdings {
		if h.Ticker != ticker {
			continue
		}
		if h.Quantity < quantity {
			return shared.NewRuleError("portfolios.insufficientShares", "cannot reduce below zero", ticker, h.Quantity)
		}
		p.Holdings[i].Quantity -= quantity
		if p.Holdings[i].Quantity == 0 {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		}
		return nil
	}
	return shared.NewRuleError("portfolios.unknownTicker", "no such holding", ticker)
}

// Quantity returns the held share count for a ticker, zero when absent.
func (p *Portfolio) Quantity(ticker string) int {
	for _, h := range p.Holdings {
		if h.Ticker == ticker {
			return h.Quantity
		}
	}
	return 0
}

var _ shared.AggregateRoot = (*Portfolio)(nil)
