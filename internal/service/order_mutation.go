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

// orderMutator wraps status updates and deletes in one transaction together
// with their outbox event.
type orderMutator struct {
	db        *sql.DB
	orderRepo repo.OrderRepo
	outbox    repo.OutboxRepo
	topic     string
	now       func() time.Time
}

func (m *orderMutator) updateStatus(ctx context.Context, order *domain.Order, status domain.OrderStatus) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.orderRepo.UpdateStatus(ctx, tx, order.ID, status); err != nil {
		return err
	}
	if err := m.record(ctx, tx, events.TypeOrderStatusChanged, order.ID, order.UserID, status); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	order.Status = status
	return nil
}

func (m *orderMutator) delete(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.orderRepo.Delete(ctx, tx, order.ID); err != nil {
		return err
	}
	if err := m.record(ctx, tx, events.TypeOrderDeleted, order.ID, order.UserID, ""); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *orderMutator) record(ctx context.Context, tx *sql.Tx, eventType string, orderId, userId int64, status domain.OrderStatus) error {
	event := events.OrderEvent{
		EventID: uuid.NewString(),
		Type:    eventType,
		OrderID: orderId,
		UserID:  userId,
		Status:  status,
		At:      m.now(),
	}
	return m.outbox.Insert(ctx, tx, event.EventID, m.topic, strconv.FormatInt(orderId, 10), event)
}
