package order

import (
	"errors"
	"testing"
	"time"

	"finmarket/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eur(amount int64) shared.Money { return shared.NewMoney(amount, "EUR") }

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("customer-1", TypeBuy, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return o
}

func TestNewOrderStartsPendingWithCreatedEvent(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.DomainEvents(), 1)
	assert.Equal(t, "order.created", o.DomainEvents()[0].EventName())
}

func TestNewOrderRequiresCustomer(t *testing.T) {
	_, err := New("", TypeBuy, time.Time{})

	var ruleErr *shared.DomainError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "orders.customerRequired", ruleErr.Code)
}

func TestAddItemRejectsDuplicateTicker(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 10, eur(70000)))

	err := o.AddItem("ASML", 5, eur(70000))

	var ruleErr *shared.DomainError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "orders.itemAlreadyExists", ruleErr.Code)
	assert.Equal(t, []any{"ASML"}, ruleErr.Params)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	o := newTestOrder(t)
	assert.Error(t, o.AddItem("ASML", 0, eur(100)))
}

func TestCannotModifyClosedOrder(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))
	require.NoError(t, o.Open(time.Now()))
	require.NoError(t, o.Fill())

	err := o.AddItem("SAP", 1, eur(100))

	var ruleErr *shared.DomainError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "orders.cannotModifyWhenClosed", ruleErr.Code)
}

func TestOpenRequiresItems(t *testing.T) {
	o := newTestOrder(t)
	assert.Error(t, o.Open(time.Now()))
}

func TestOpenRejectsExpiredOrder(t *testing.T) {
	o, err := New("customer-1", TypeSell, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))

	assert.Error(t, o.Open(time.Now()))
}

func TestFillOnlyFromOpen(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))

	assert.Error(t, o.Fill(), "pending order cannot be filled")

	require.NoError(t, o.Open(time.Now()))
	require.NoError(t, o.Fill())
	assert.Equal(t, StatusFilled, o.Status)
}

func TestFillRaisesFilledEvent(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 2, eur(50)))
	require.NoError(t, o.Open(time.Now()))
	o.ClearDomainEvents()

	require.NoError(t, o.Fill())

	require.Len(t, o.DomainEvents(), 1)
	evt, ok := o.DomainEvents()[0].(FilledEvent)
	require.True(t, ok)
	assert.True(t, evt.Total.Equals(eur(100)))
}

func TestCancelFilledOrderFails(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))
	require.NoError(t, o.Open(time.Now()))
	require.NoError(t, o.Fill())

	assert.Error(t, o.Cancel())
}

func TestCancelOpenOrder(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))
	require.NoError(t, o.Open(time.Now()))

	require.NoError(t, o.Cancel())
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestTotalValueSumsLineItems(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 3, eur(100)))
	require.NoError(t, o.AddItem("SAP", 2, eur(250)))

	assert.True(t, o.TotalValue().Equals(eur(800)))
}
