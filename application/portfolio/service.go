/*
Package portfolio holds the portfolio and market-data application service.
Stock reads typically go through the caching decorator; the service neither
knows nor cares.
*/
package portfolio

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finmarket/domain/portfolio"
	"finmarket/domain/shared"
	"finmarket/pkg/notification"

	"github.com/google/uuid"
)

// Service coordinates stock, bond and portfolio use cases.
type Service struct {
	stocks     shared.Repository[*portfolio.Stock]
	bonds      shared.Repository[*portfolio.Bond]
	portfolios shared.Repository[*portfolio.Portfolio]
	uow        shared.UnitOfWork
}

func NewService(
	stocks shared.Repository[*portfolio.Stock],
	bonds shared.Repository[*portfolio.Bond],
	portfolios shared.Repository[*portfolio.Portfolio],
	uow shared.UnitOfWork,
) *Service {
	return &Service{stocks: stocks, bonds: bonds, portfolios: portfolios, uow: uow}
}

// StockRequest Create stock request DTO
type StockRequest struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	MarketCap   int64  `json:"market_cap"`
}

// StockResponse Stock response DTO
type StockResponse struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Price       string `json:"price"`
	MarketCap   int64  `json:"market_cap"`
	Version     int    `json:"version"`
}

// BondRequest Create bond request DTO
type BondRequest struct {
	Ticker          string    `json:"ticker"`
	IssuerName      string    `json:"issuer_name"`
	Price           int64     `json:"price"`
	Currency        string    `json:"currency"`
	InterestRateBps int       `json:"interest_rate_bps"`
	MaturityDate    time.Time `json:"maturity_date"`
}

// BondResponse Bond response DTO
type BondResponse struct {
	ID              string    `json:"id"`
	Ticker          string    `json:"ticker"`
	IssuerName      string    `json:"issuer_name"`
	Price           string    `json:"price"`
	InterestRateBps int       `json:"interest_rate_bps"`
	MaturityDate    time.Time `json:"maturity_date"`
}

// PortfolioResponse Portfolio response DTO
type PortfolioResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	OwnerID  string              `json:"owner_id"`
	Holdings []portfolio.Holding `json:"holdings"`
}

// RegisterStock lists a new stock.
func (s *Service) RegisterStock(ctx context.Context, req StockRequest) notification.Result[*StockResponse] {
	handler := notification.NewHandler()

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	stock, err := portfolio.NewStock(req.Ticker, req.CompanyName, req.Sector, shared.NewMoney(req.Price, currency), req.MarketCap)
	if err != nil {
		return failure[*StockResponse](handler, err, http.StatusUnprocessableEntity)
	}

	if err := s.stocks.Add(ctx, stock); err != nil {
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toStockResponse(stock), http.StatusCreated)
}

// GetStock loads one stock.
func (s *Service) GetStock(ctx context.Context, id uuid.UUID) notification.Result[*StockResponse] {
	handler := notification.NewHandler()

	stock, err := s.stocks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("stocks.notFound", "stock does not exist")
			return notification.FailureFrom[*StockResponse](handler, http.StatusNotFound)
		}
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toStockResponse(stock), http.StatusOK)
}

// ListBySector returns the stocks of one sector ordered by ticker.
func (s *Service) ListBySector(ctx context.Context, sector string) notification.Result[[]*StockResponse] {
	handler := notification.NewHandler()

	spec := shared.NewSpecification().
		Where("sector = ?", sector).
		OrderBy("ticker")
	stocks, err := s.stocks.List(ctx, spec)
	if err != nil {
		return failure[[]*StockResponse](handler, err, http.StatusInternalServerError)
	}

	out := make([]*StockResponse, len(stocks))
	for i, stock := range stocks {
		out[i] = toStockResponse(stock)
	}
	return notification.Success(out, http.StatusOK)
}

// UpdateMarketData replaces a stock's quote. Concurrent updates lose with a
// conflict outcome; the caller reloads and retries.
func (s *Service) UpdateMarketData(ctx context.Context, id uuid.UUID, price int64, marketCap int64) notification.Result[*StockResponse] {
	handler := notification.NewHandler()

	stock, err := s.stocks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("stocks.notFound", "stock does not exist")
			return notification.FailureFrom[*StockResponse](handler, http.StatusNotFound)
		}
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}

	if err := stock.UpdateMarketData(shared.NewMoney(price, stock.Price.Currency), marketCap); err != nil {
		return failure[*StockResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.stocks.Update(ctx, stock); err != nil {
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			handler.AddError("stocks.concurrentModification", "the stock was changed by someone else, reload and retry")
			return notification.FailureFrom[*StockResponse](handler, http.StatusConflict)
		}
		return failure[*StockResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toStockResponse(stock), http.StatusOK)
}

// RegisterBond lists a new fixed-income asset.
func (s *Service) RegisterBond(ctx context.Context, req BondRequest) notification.Result[*BondResponse] {
	handler := notification.NewHandler()

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	bond, err := portfolio.NewBond(req.Ticker, req.IssuerName, shared.NewMoney(req.Price, currency),
		req.InterestRateBps, req.MaturityDate)
	if err != nil {
		return failure[*BondResponse](handler, err, http.StatusUnprocessableEntity)
	}

	if err := s.bonds.Add(ctx, bond); err != nil {
		return failure[*BondResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		return failure[*BondResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toBondResponse(bond), http.StatusCreated)
}

// ListBondsMaturingBefore returns the bonds whose maturity falls before the
// cutoff, soonest first.
func (s *Service) ListBondsMaturingBefore(ctx context.Context, cutoff time.Time) notification.Result[[]*BondResponse] {
	handler := notification.NewHandler()

	spec := shared.NewSpecification().
		Where("maturity_date < ?", cutoff).
		OrderBy("maturity_date")
	bonds, err := s.bonds.List(ctx, spec)
	if err != nil {
		return failure[[]*BondResponse](handler, err, http.StatusInternalServerError)
	}

	out := make([]*BondResponse, len(bonds))
	for i, bond := range bonds {
		out[i] = toBondResponse(bond)
	}
	return notification.Success(out, http.StatusOK)
}

// CreatePortfolio opens an empty portfolio.
func (s *Service) CreatePortfolio(ctx context.Context, name, ownerID string) notification.Result[*PortfolioResponse] {
	handler := notification.NewHandler()

	p, err := portfolio.NewPortfolio(name, ownerID)
	if err != nil {
		return failure[*PortfolioResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.portfolios.Add(ctx, p); err != nil {
		return failure[*PortfolioResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		return failure[*PortfolioResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toPortfolioResponse(p), http.StatusCreated)
}

// AddHolding adds shares to a portfolio.
func (s *Service) AddHolding(ctx context.Context, portfolioID uuid.UUID, ticker string, quantity int) notification.Result[*PortfolioResponse] {
	handler := notification.NewHandler()

	p, err := s.portfolios.GetByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("portfolios.notFound", "portfolio does not exist")
			return notification.FailureFrom[*PortfolioResponse](handler, http.StatusNotFound)
		}
		return failure[*PortfolioResponse](handler, err, http.StatusInternalServerError)
	}

	if err := p.AddHolding(ticker, quantity); err != nil {
		return failure[*PortfolioResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.portfolios.Update(ctx, p); err != nil {
		return failure[*PortfolioResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			handler.AddError("portfolios.concurrentModification", "the portfolio was changed by someone else, reload and retry")
			return notification.FailureFrom[*PortfolioResponse](handler, http.StatusConflict)
		}
		return failure[*PortfolioResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toPortfolioResponse(p), http.StatusOK)
}

func failure[T any](handler *notification.Handler, err error, status int) notification.Result[T] {
	var ruleErr *shared.DomainError
	if errors.As(err, &ruleErr) {
		handler.AddError(ruleErr.Code, ruleErr.Message)
	} else {
		handler.AddError("portfolios.failed", err.Error())
	}
	return notification.FailureFrom[T](handler, status)
}

func toStockResponse(stock *portfolio.Stock) *StockResponse {
	return &StockResponse{
		ID:          stock.ID.String(),
		Ticker:      stock.Ticker,
		CompanyName: stock.CompanyName,
		Sector:      stock.Sector,
		Price:       stock.Price.String(),
		MarketCap:   stock.MarketCap,
		Version:     stock.Version,
	}
}

func toBondResponse(bond *portfolio.Bond) *BondResponse {
	return &BondResponse{
		ID:              bond.ID.String(),
		Ticker:          bond.Ticker,
		IssuerName:      bond.IssuerName,
		Price:           bond.Price.String(),
		InterestRateBps: bond.InterestRateBps,
		MaturityDate:    bond.MaturityDate,
	}
}

func toPortfolioResponse(p *portfolio.Portfolio) *PortfolioResponse {
	return &PortfolioResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		OwnerID:  p.OwnerID,
		Holdings: p.Holdings,
	}
}
