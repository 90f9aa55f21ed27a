/*
Package portfolio holds the portfolio aggregate and the tradable assets,
stocks and bonds, of the sample application. All three types are registered
cacheable at composition time, which makes them the entities exercising the
read-through cache and its invalidation path.
*/
package portfolio

import (
	"strings"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// Registry names for cache policies and audit entries.
const (
	StockEntityName     = "Stock"
	PortfolioEntityName = "Portfolio"
)

// Stock is a single listed asset and an aggregate root of its own.
type Stock struct {
	shared.EntityBase
	Ticker      string       `json:"ticker"`
	CompanyName string       `json:"company_name"`
	Sector      string       `json:"sector"`
	Price       shared.Money `json:"price"`
	MarketCap   int64        `json:"market_cap"`
}

// NewStock creates a stock. Tickers are stored uppercase.
func NewStock(ticker, companyName, sector string, price shared.Money, marketCap int64) (*Stock, error) {
	if ticker == "" {
		return nil, shared.NewRuleError("stocks.tickerRequired", "a stock needs a ticker")
	}
	if price.Amount < 0 {
		return nil, shared.NewRuleError("stocks.price.negative", "price cannot be negative", price.Amount)
	}
	return &Stock{
		EntityBase:  shared.EntityBase{ID: uuid.New()},
		Ticker:      strings.ToUpper(ticker),
		CompanyName: companyName,
		Sector:      sector,
		Price:       price,
		MarketCap:   marketCap,
	}, nil
}

// UpdateMarketData replaces price and market cap with fresh quotes.
func (s *Stock) UpdateMarketData(price shared.Money, marketCap int64) error {
	if price.Amount < 0 {
		return shared.NewRuleError("stocks.price.negative", "price cannot be negative", price.Amount)
	}
	s.Price = price
	s.MarketCap = marketCap
	return nil
}

var _ shared.AggregateRoot = (*Stock)(nil)
