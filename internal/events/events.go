package events

import (
	"time"

	"order-service/internal/domain"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderDeleted       = "order.deleted"
)

// OrderEvent is the payload published for every order lifecycle change.
type OrderEvent struct {
	EventID string             `json:"event_id"`
	Type    string             `json:"type"`
	OrderID int64              `json:"order_id"`
	UserID  int64              `json:"user_id"`
	Status  domain.OrderStatus `json:"status,omitempty"`
	At      time.Time          `json:"at"`
}
