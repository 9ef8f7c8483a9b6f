package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/repo"

	"github.com/google/uuid"
)

type CreateOrderLine struct {
	ItemID   int64
	Quantity int
}

// OrderUserResult is an order joined with its owner's profile, so callers
// never need a second lookup.
type OrderUserResult struct {
	Order domain.Order
	User  *domain.UserProfile
}

// OrderCreator validates and assembles an order aggregate from requested
// item ids and persists it as a single transactional unit.
type OrderCreator interface {
	CreateFromRequestAndUser(ctx context.Context, lines []CreateOrderLine, user *domain.UserProfile) (*OrderUserResult, error)
}

type orderCreator struct {
	db        *sql.DB
	itemRepo  repo.ItemRepo
	orderRepo repo.OrderRepo
	outbox    repo.OutboxRepo
	topic     string
	now       func() time.Time
}

func NewOrderCreator(db *sql.DB, itemRepo repo.ItemRepo, orderRepo repo.OrderRepo, outbox repo.OutboxRepo, topic string) OrderCreator {
	return &orderCreator{
		db:        db,
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		outbox:    outbox,
		topic:     topic,
		now:       time.Now,
	}
}

func (c *orderCreator) CreateFromRequestAndUser(ctx context.Context, lines []CreateOrderLine, user *domain.UserProfile) (*OrderUserResult, error) {
	requested := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, seen := requested[line.ItemID]; !seen {
			requested[line.ItemID] = struct{}{}
			ids = append(ids, line.ItemID)
		}
	}

	items, err := c.itemRepo.FindAllByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemsById := make(map[int64]domain.Item, len(items))
	for _, item := range items {
		itemsById[item.ID] = item
	}

	var missing []int64
	for id := range requested {
		if _, ok := itemsById[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ItemsNotFoundError{MissingIDs: missing}
	}

	order := domain.Order{
		UserID:       *user.ID,
		Status:       domain.OrderNew,
		CreationDate: c.now(),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ItemID:   line.ItemID,
			Item:     itemsById[line.ItemID],
			Quantity: line.Quantity,
		})
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := c.orderRepo.Create(ctx, tx, &order); err != nil {
		return nil, err
	}

	event := events.OrderEvent{
		EventID: uuid.NewString(),
		Type:    events.TypeOrderCreated,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		At:      order.CreationDate,
	}
	if err := c.outbox.Insert(ctx, tx, event.EventID, c.topic, strconv.FormatInt(order.ID, 10), event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &OrderUserResult{Order: order, User: user}, nil
}
