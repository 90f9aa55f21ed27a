/*
Package order holds the order application service. It orchestrates the order
aggregate, the repository and the unit of work, and reports business outcomes
as notification results instead of raw errors.
*/
package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finmarket/domain/order"
	"finmarket/domain/shared"
	"finmarket/pkg/notification"

	"github.com/google/uuid"
)

// Service coordinates order use cases.
type Service struct {
	orders shared.Repository[*order.Order]
	uow    shared.UnitOfWork
}

func NewService(orders shared.Repository[*order.Order], uow shared.UnitOfWork) *Service {
	return &Service{orders: orders, uow: uow}
}

// ItemRequest is one requested line item.
type ItemRequest struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

// PlaceOrderRequest Create order request DTO
type PlaceOrderRequest struct {
	CustomerID string        `json:"customer_id"`
	Type       string        `json:"type"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Items      []ItemRequest `json:"items"`
}

// OrderResponse Order response DTO
type OrderResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	TotalValue string    `json:"total_value"`
	ItemCount  int       `json:"item_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaceOrder creates a pending order with its line items and commits.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) notification.Result[*OrderResponse] {
	handler := notification.NewHandler()

	o, err := order.New(req.CustomerID, order.Type(req.Type), req.ExpiresAt)
	if err != nil {
		return failure[*OrderResponse](handler, err, http.StatusUnprocessableEntity)
	}
	for _, item := range req.Items {
		currency := item.Currency
		if currency == "" {
			currency = "EUR"
		}
		if err := o.AddItem(item.Ticker, item.Quantity, shared.NewMoney(item.Price, currency)); err != nil {
			return failure[*OrderResponse](handler, err, http.StatusUnprocessableEntity)
		}
	}

	if err := s.orders.Add(ctx, o); err != nil {
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(o), http.StatusCreated)
}

// GetOrder loads one order.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) notification.Result[*OrderResponse] {
	handler := notification.NewHandler()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("orders.notFound", "order does not exist")
			return notification.FailureFrom[*OrderResponse](handler, http.StatusNotFound)
		}
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(o), http.StatusOK)
}

// ListOrders returns a customer's orders, most recent first.
func (s *Service) ListOrders(ctx context.Context, customerID string) notification.Result[[]*OrderResponse] {
	handler := notification.NewHandler()

	spec := shared.NewSpecification().
		Where("customer_id = ?", customerID).
		OrderByDesc("created_at")
	orders, err := s.orders.List(ctx, spec)
	if err != nil {
		return failure[[]*OrderResponse](handler, err, http.StatusInternalServerError)
	}

	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toResponse(o)
	}
	return notification.Success(out, http.StatusOK)
}

// OpenOrder moves a pending order to the open book.
func (s *Service) OpenOrder(ctx context.Context, id uuid.UUID) notification.Result[*OrderResponse] {
	return s.transition(ctx, id, func(o *order.Order) error {
		return o.Open(time.Now().UTC())
	})
}

// FillOrder executes an open order.
func (s *Service) FillOrder(ctx context.Context, id uuid.UUID) notification.Result[*OrderResponse] {
	return s.transition(ctx, id, (*order.Order).Fill)
}

// CancelOrder withdraws an unfilled order.
func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID) notification.Result[*OrderResponse] {
	return s.transition(ctx, id, (*order.Order).Cancel)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, mutate func(*order.Order) error) notification.Result[*OrderResponse] {
	handler := notification.NewHandler()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			handler.AddError("orders.notFound", "order does not exist")
			return notification.FailureFrom[*OrderResponse](handler, http.StatusNotFound)
		}
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}

	if err := mutate(o); err != nil {
		return failure[*OrderResponse](handler, err, http.StatusUnprocessableEntity)
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}
	if _, err := s.uow.Complete(ctx); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			handler.AddError("orders.concurrentModification", "the order was changed by someone else, reload and retry")
			return notification.FailureFrom[*OrderResponse](handler, http.StatusConflict)
		}
		return failure[*OrderResponse](handler, err, http.StatusInternalServerError)
	}
	return notification.Success(toResponse(o), http.StatusOK)
}

// failure folds an error into the handler: rule violations keep their code,
// anything else becomes a generic notification.
func failure[T any](handler *notification.Handler, err error, status int) notification.Result[T] {
	var ruleErr *shared.DomainError
	if errors.As(err, &ruleErr) {
		handler.AddError(ruleErr.Code, ruleErr.Message)
	} else {
		handler.AddError("orders.failed", err.Error())
	}
	return notification.FailureFrom[T](handler, status)
}

func toResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:         o.ID.String(),
		CustomerID: o.CustomerID,
		Type:       string(o.Type),
		Status:     string(o.Status),
		TotalValue: o.TotalValue().String(),
		ItemCount:  len(o.LineItems),
		CreatedAt:  o.CreatedAt,
	}
}
