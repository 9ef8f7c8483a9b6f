package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderNew        OrderStatus = "NEW"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a status string against the closed set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderNew, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is the aggregate root. It owns its lines by value; the order_id
// back-reference on each line is written by the repo at insert time.
type Order struct {
	ID           int64
	UserID       int64
	Status       OrderStatus
	CreationDate time.Time
	Lines        []OrderLine
}

type OrderLine struct {
	ID       int64
	ItemID   int64
	Item     Item
	Quantity int
}
