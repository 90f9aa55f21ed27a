package order

import (
	"context"
	"net/http"
	"testing"
	"time"

	"finmarket/domain/order"
	"finmarket/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byID map[uuid.UUID]*order.Order
	all  []*order.Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[uuid.UUID]*order.Order)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.byID[id]; ok {
		return o, nil
	}
	return nil, shared.NewNotFoundError("Order")
}

func (r *memoryRepo) GetBySpec(ctx context.Context, spec *shared.Specification) (*order.Order, error) {
	if len(r.all) == 0 {
		return nil, shared.NewNotFoundError("Order")
	}
	return r.all[0], nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]*order.Order, error) { return r.all, nil }

func (r *memoryRepo) List(ctx context.Context, spec *shared.Specification) ([]*order.Order, error) {
	return r.all, nil
}

func (r *memoryRepo) Count(ctx context.Context, spec *shared.Specification) (int64, error) {
	return int64(len(r.all)), nil
}

func (r *memoryRepo) Add(ctx context.Context, o *order.Order) error {
	r.byID[o.ID] = o
	r.all = append(r.all, o)
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, o *order.Order) error { return nil }
func (r *memoryRepo) Remove(ctx context.Context, o *order.Order) error { return nil }

var _ shared.Repository[*order.Order] = (*memoryRepo)(nil)

type stubUow struct {
	completeErr error
	completions int
}

func (u *stubUow) Complete(ctx context.Context) (int, error) {
	u.completions++
	if u.completeErr != nil {
		return 0, u.completeErr
	}
	return 1, nil
}
func (u *stubUow) BeginTransaction(ctx context.Context) error    { return nil }
func (u *stubUow) CommitTransaction(ctx context.Context) error   { return nil }
func (u *stubUow) RollbackTransaction(ctx context.Context) error { return nil }
func (u *stubUow) Close() error                                  { return nil }

var _ shared.UnitOfWork = (*stubUow)(nil)

func placeRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerID: "customer-1",
		Type:       "BUY",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		Items: []ItemRequest{
			{Ticker: "ASML", Quantity: 2, Price: 70000},
			{Ticker: "SAP", Quantity: 1, Price: 12000},
		},
	}
}

func TestPlaceOrder(t *testing.T) {
	repo := newMemoryRepo()
	uow := &stubUow{}
	svc := NewService(repo, uow)

	res := svc.PlaceOrder(context.Background(), placeRequest())

	require.True(t, res.IsSuccess())
	assert.Equal(t, http.StatusCreated, res.SuggestedStatus)
	assert.Equal(t, "PENDING", res.Value.Status)
	assert.Equal(t, 2, res.Value.ItemCount)
	assert.Equal(t, 1, uow.completions)
	assert.Len(t, repo.all, 1)
}

func TestPlaceOrderInvalidTypeFails(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})

	req := placeRequest()
	req.Type = "SHORT"
	res := svc.PlaceOrder(context.Background(), req)

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusUnprocessableEntity, res.SuggestedStatus)
	require.NotEmpty(t, res.Notifications)
	assert.Equal(t, "orders.invalidType", res.Notifications[0].Key)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})

	res := svc.GetOrder(context.Background(), uuid.New())

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusNotFound, res.SuggestedStatus)
	assert.Equal(t, "orders.notFound", res.Notifications[0].Key)
}

func TestFillPendingOrderFails(t *testing.T) {
	repo := newMemoryRepo()
	uow := &stubUow{}
	svc := NewService(repo, uow)

	placed := svc.PlaceOrder(context.Background(), placeRequest())
	require.True(t, placed.IsSuccess())
	id := uuid.MustParse(placed.Value.ID)

	res := svc.FillOrder(context.Background(), id)

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusUnprocessableEntity, res.SuggestedStatus)
	assert.Equal(t, "orders.cannotBeFilled", res.Notifications[0].Key)
}

func TestOpenThenFillOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &stubUow{})
	ctx := context.Background()

	placed := svc.PlaceOrder(ctx, placeRequest())
	require.True(t, placed.IsSuccess())
	id := uuid.MustParse(placed.Value.ID)

	opened := svc.OpenOrder(ctx, id)
	require.True(t, opened.IsSuccess())
	assert.Equal(t, "OPEN", opened.Value.Status)

	filled := svc.FillOrder(ctx, id)
	require.True(t, filled.IsSuccess())
	assert.Equal(t, "FILLED", filled.Value.Status)
}

func TestConcurrencyConflictSurfacesAsConflict(t *testing.T) {
	repo := newMemoryRepo()
	uow := &stubUow{}
	svc := NewService(repo, uow)
	ctx := context.Background()

	placed := svc.PlaceOrder(ctx, placeRequest())
	require.True(t, placed.IsSuccess())
	id := uuid.MustParse(placed.Value.ID)

	uow.completeErr = shared.ErrConcurrencyConflict
	res := svc.OpenOrder(ctx, id)

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusConflict, res.SuggestedStatus)
	assert.Equal(t, "orders.concurrentModification", res.Notifications[0].Key)
}

func TestListOrders(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &stubUow{})
	ctx := context.Background()

	require.True(t, svc.PlaceOrder(ctx, placeRequest()).IsSuccess())
	require.True(t, svc.PlaceOrder(ctx, placeRequest()).IsSuccess())

	res := svc.ListOrders(ctx, "customer-1")
	require.True(t, res.IsSuccess())
	assert.Len(t, res.Value, 2)
}
