package exchange

import (
	"context"
	"net/http"
	"testing"

	"finmarket/domain/exchange"
	"finmarket/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byID map[uuid.UUID]*exchange.Exchange
	all  []*exchange.Exchange
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[uuid.UUID]*exchange.Exchange)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*exchange.Exchange, error) {
	if e, ok := r.byID[id]; ok {
		return e, nil
	}
	return nil, shared.NewNotFoundError(exchange.EntityName)
}

func (r *memoryRepo) GetBySpec(ctx context.Context, spec *shared.Specification) (*exchange.Exchange, error) {
	if len(r.all) == 0 {
		return nil, shared.NewNotFoundError(exchange.EntityName)
	}
	return r.all[0], nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]*exchange.Exchange, error) { return r.all, nil }

func (r *memoryRepo) List(ctx context.Context, spec *shared.Specification) ([]*exchange.Exchange, error) {
	return r.all, nil
}

func (r *memoryRepo) Count(ctx context.Context, spec *shared.Specification) (int64, error) {
	return int64(len(r.all)), nil
}

func (r *memoryRepo) Add(ctx context.Context, e *exchange.Exchange) error {
	r.byID[e.ID] = e
	r.all = append(r.all, e)
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, e *exchange.Exchange) error { return nil }
func (r *memoryRepo) Remove(ctx context.Context, e *exchange.Exchange) error { return nil }

var _ shared.Repository[*exchange.Exchange] = (*memoryRepo)(nil)

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

func TestCreateExchange(t *testing.T) {
	uow := &stubUow{}
	svc := NewService(newMemoryRepo(), uow)

	res := svc.CreateExchange(context.Background(), "Euronext Amsterdam", "ams", "Netherlands")

	require.True(t, res.IsSuccess())
	assert.Equal(t, http.StatusCreated, res.SuggestedStatus)
	assert.Equal(t, "AMS", res.Value.Acronym)
	assert.Equal(t, 1, uow.completions)
}

func TestCreateExchangeWithoutNameFails(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})

	res := svc.CreateExchange(context.Background(), "", "AMS", "Netherlands")

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusUnprocessableEntity, res.SuggestedStatus)
	assert.Equal(t, "exchanges.nameRequired", res.Notifications[0].Key)
}

func TestGetExchangeNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})

	res := svc.GetExchange(context.Background(), uuid.New())

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusNotFound, res.SuggestedStatus)
	assert.Equal(t, "exchanges.notFound", res.Notifications[0].Key)
}

func TestUpdateDetails(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})
	ctx := context.Background()

	created := svc.CreateExchange(ctx, "Euronext Amsterdam", "AMS", "Netherlands")
	require.True(t, created.IsSuccess())
	id := uuid.MustParse(created.Value.ID)

	res := svc.UpdateDetails(ctx, id, "Euronext", "France")

	require.True(t, res.IsSuccess())
	assert.Equal(t, "Euronext", res.Value.Name)
	assert.Equal(t, "France", res.Value.Country)
}

func TestUpdateDetailsConflict(t *testing.T) {
	uow := &stubUow{}
	svc := NewService(newMemoryRepo(), uow)
	ctx := context.Background()

	created := svc.CreateExchange(ctx, "Euronext Amsterdam", "AMS", "Netherlands")
	require.True(t, created.IsSuccess())
	id := uuid.MustParse(created.Value.ID)

	uow.completeErr = shared.ErrConcurrencyConflict
	res := svc.UpdateDetails(ctx, id, "Euronext", "France")

	require.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusConflict, res.SuggestedStatus)
	assert.Equal(t, "exchanges.concurrentModification", res.Notifications[0].Key)
}

func TestListExchanges(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubUow{})
	ctx := context.Background()

	require.True(t, svc.CreateExchange(ctx, "Euronext Amsterdam", "AMS", "Netherlands").IsSuccess())
	require.True(t, svc.CreateExchange(ctx, "Deutsche Boerse", "XETR", "Germany").IsSuccess())

	res := svc.ListExchanges(ctx)
	require.True(t, res.IsSuccess())
	assert.Len(t, res.Value, 2)
}
