package service

import (
	"context"
	"encoding/json"
	"testing"

	"order-service/internal/domain"
	"order-service/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func userWithId(id int64) *domain.UserProfile {
	return &domain.UserProfile{ID: &id, Name: "user", Email: "user@example.com"}
}

func TestCreateOrderFailsWhenItemsMissing(t *testing.T) {
	itemRepo := newFakeItemRepo(
		domain.Item{ID: 1, Name: "Laptop", Price: price("1200.00")},
	)
	orderRepo := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	creator := NewOrderCreator(newStubDB(t), itemRepo, orderRepo, outbox, "order-events")

	_, err := creator.CreateFromRequestAndUser(context.Background(), []CreateOrderLine{
		{ItemID: 1, Quantity: 1},
		{ItemID: 5, Quantity: 2},
		{ItemID: 9, Quantity: 1},
	}, userWithId(1))

	var missing *domain.ItemsNotFoundError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []int64{5, 9}, missing.MissingIDs)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// no partial order, no event
	assert.Empty(t, orderRepo.orders)
	assert.Empty(t, outbox.entries)
}

func TestCreateOrderBuildsAggregate(t *testing.T) {
	itemRepo := newFakeItemRepo(
		domain.Item{ID: 1, Name: "Laptop", Price: price("1200.00")},
		domain.Item{ID: 2, Name: "Router", Price: price("200.00")},
	)
	orderRepo := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	creator := NewOrderCreator(newStubDB(t), itemRepo, orderRepo, outbox, "order-events")

	request := []CreateOrderLine{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 3},
	}
	result, err := creator.CreateFromRequestAndUser(context.Background(), request, userWithId(7))
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.Order.UserID)
	assert.Equal(t, domain.OrderNew, result.Order.Status)
	assert.False(t, result.Order.CreationDate.IsZero())
	require.Len(t, result.Order.Lines, len(request))
	for i, line := range result.Order.Lines {
		assert.Equal(t, request[i].ItemID, line.ItemID)
		assert.Equal(t, request[i].Quantity, line.Quantity)
		assert.Equal(t, request[i].ItemID, line.Item.ID)
	}
	require.NotNil(t, result.User)
	assert.Equal(t, int64(7), *result.User.ID)

	// persisted and announced
	require.Len(t, orderRepo.orders, 1)
	require.Len(t, outbox.entries, 1)
	assert.Equal(t, "order-events", outbox.entries[0].Topic)

	var event events.OrderEvent
	require.NoError(t, json.Unmarshal(outbox.entries[0].Payload, &event))
	assert.Equal(t, events.TypeOrderCreated, event.Type)
	assert.Equal(t, result.Order.ID, event.OrderID)
	assert.Equal(t, int64(7), event.UserID)
}

func TestCreateOrderDeduplicatesLookupButKeepsLines(t *testing.T) {
	itemRepo := newFakeItemRepo(
		domain.Item{ID: 1, Name: "Laptop", Price: price("1200.00")},
	)
	creator := NewOrderCreator(newStubDB(t), itemRepo, newFakeOrderRepo(), &fakeOutboxRepo{}, "order-events")

	// two request lines for the same item produce two order lines
	result, err := creator.CreateFromRequestAndUser(context.Background(), []CreateOrderLine{
		{ItemID: 1, Quantity: 1},
		{ItemID: 1, Quantity: 2},
	}, userWithId(1))
	require.NoError(t, err)
	assert.Len(t, result.Order.Lines, 2)
}
