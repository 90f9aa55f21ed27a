// Package exchange holds the trading-venue application service, plain CRUD
// over the generic repository.
package exchange

import (
	"context"
	"errors"
	"net/http"

	"finmarket/domain/exchange"
	"finmarket/domain/shared"
	"finmarket/pkg/notification"

	"github.com/google/uuid"
)

// Service coordinates exchange use cases.
type Service struct {
	exchanges shared.Repository[*exchange.Exchange]
	uow       shared.UnitOfWork
}

func NewService(exchanges shared.Repository[*exchange.Exchange], uow shared.UnitOfWork) *Service {
	return &Service{exchanges: exchanges, uow: uow}
}

// ExchangeResponse Exchange response DTO
type ExchangeResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	Country string `json:"country"`
}

// CreateExchange registers a trading venue.
func (s *Service) CreateExchange(ctx context.Context, name, acronym, country string) notification.Result[*ExchangeResponse] {
	handler := notification.NewHandler()

	e, err := exchange.New(name, acronym, country)
	if err != nil {
		return failure[*ExchangeResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.exchanges.Add(ctx, e); err != nil {
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(e), http.StatusCreated)
}

// GetExchange loads one exchange.
func (s *Service) GetExchange(ctx context.Context, id uuid.UUID) notification.Result[*ExchangeResponse] {
	handler := notification.NewHandler()

	e, err := s.exchanges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("exchanges.notFound", "exchange does not exist")
			return notification.FailureFrom[*ExchangeResponse](handler, http.StatusNotFound)
		}
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(e), http.StatusOK)
}

// ListExchanges returns all venues ordered by name.
func (s *Service) ListExchanges(ctx context.Context) notification.Result[[]*ExchangeResponse] {
	handler := notification.NewHandler()

	spec := shared.NewSpecification().OrderBy("name")
	exchanges, err := s.exchanges.List(ctx, spec)
	if err != nil {
		return failure[[]*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}

	out := make([]*ExchangeResponse, len(exchanges))
	for i, e := range exchanges {
		out[i] = toResponse(e)
	}
	return notification.Success(out, http.StatusOK)
}

// UpdateDetails renames an exchange or corrects its country.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, name, country string) notification.Result[*ExchangeResponse] {
	handler := notification.NewHandler()

	e, err := s.exchanges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("exchanges.notFound", "exchange does not exist")
			return notification.FailureFrom[*ExchangeResponse](handler, http.StatusNotFound)
		}
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}

	if err := e.UpdateDetails(name, country); err != nil {
		return failure[*ExchangeResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.exchanges.Update(ctx, e); err != nil {
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			handler.AddError("exchanges.concurrentModification", "the exchange was changed by someone else, reload and retry")
			return notification.FailureFrom[*ExchangeResponse](handler, http.StatusConflict)
		}
		return failure[*ExchangeResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(e), http.StatusOK)
}

func failure[T any](handler *notification.Handler, err error, status int) notification.Result[T] {
	var ruleErr *shared.DomainError
	if errors.As(err, &ruleErr) {
		handler.AddError(ruleErr.Code, ruleErr.Message)
	} else {
		handler.AddError("exchanges.failed", err.Error())
	}
	return notification.FailureFrom[T](handler, status)
}

func toResponse(e *exchange.Exchange) *ExchangeResponse {
	return &ExchangeResponse{
		ID:      e.ID.String(),
		Name:    e.Name,
		Acronym: e.Acronym,
		Country: e.Country,
	}
}
