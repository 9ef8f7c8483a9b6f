package service

import (
	"context"
	"fmt"

	"order-service/internal/domain"
)

// OrderService is the single entry point for all order operations. The
// caller's role is determined once per call and dispatched to exactly one of
// the admin or user paths; any unrecognized role is rejected outright.
type OrderService interface {
	GetOrderById(ctx context.Context, caller domain.Identity, id int64) (*OrderUserResult, error)
	GetOrdersByIds(ctx context.Context, caller domain.Identity, ids []int64) ([]OrderUserResult, error)
	GetOrdersByStatuses(ctx context.Context, caller domain.Identity, statuses []domain.OrderStatus) ([]OrderUserResult, error)
	// CreateOrderForUser is the admin-only variant with an explicit target
	// user.
	CreateOrderForUser(ctx context.Context, caller domain.Identity, targetUserId int64, lines []CreateOrderLine) (*OrderUserResult, error)
	// CreateOrder is the self-service variant; the caller is always the
	// owner.
	CreateOrder(ctx context.Context, caller domain.Identity, lines []CreateOrderLine) (*OrderUserResult, error)
	UpdateOrderStatusById(ctx context.Context, caller domain.Identity, id int64, status domain.OrderStatus) (*OrderUserResult, error)
	DeleteOrderById(ctx context.Context, caller domain.Identity, id int64) error
}

type orderService struct {
	admin AdminOrderService
	user  UserOrderService
}

func NewOrderService(admin AdminOrderService, user UserOrderService) OrderService {
	return &orderService{admin: admin, user: user}
}

func (s *orderService) GetOrderById(ctx context.Context, caller domain.Identity, id int64) (*OrderUserResult, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.admin.GetOrderById(ctx, id)
	case domain.RoleUser:
		return s.user.GetOrderById(ctx, id, caller.Email)
	default:
		return nil, roleErr(caller)
	}
}

func (s *orderService) GetOrdersByIds(ctx context.Context, caller domain.Identity, ids []int64) ([]OrderUserResult, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.admin.GetOrdersByIds(ctx, ids)
	case domain.RoleUser:
		return s.user.GetOrdersByIds(ctx, ids, caller.Email)
	default:
		return nil, roleErr(caller)
	}
}

func (s *orderService) GetOrdersByStatuses(ctx context.Context, caller domain.Identity, statuses []domain.OrderStatus) ([]OrderUserResult, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.admin.GetOrdersByStatuses(ctx, statuses)
	case domain.RoleUser:
		return s.user.GetOrdersByStatuses(ctx, statuses, caller.Email)
	default:
		return nil, roleErr(caller)
	}
}

func (s *orderService) CreateOrderForUser(ctx context.Context, caller domain.Identity, targetUserId int64, lines []CreateOrderLine) (*OrderUserResult, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("create order for explicit user: %w", domain.ErrAccessDenied)
	}
	return s.admin.CreateOrder(ctx, targetUserId, lines)
}

func (s *orderService) CreateOrder(ctx context.Context, caller domain.Identity, lines []CreateOrderLine) (*OrderUserResult, error) {
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleUser:
		// Self-service creation always resolves the owner from the
		// caller's email, admins included.
		return s.user.CreateOrder(ctx, lines, caller.Email)
	default:
		return nil, roleErr(caller)
	}
}

func (s *orderService) UpdateOrderStatusById(ctx context.Context, caller domain.Identity, id int64, status domain.OrderStatus) (*OrderUserResult, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.admin.UpdateOrderStatusById(ctx, id, status)
	case domain.RoleUser:
		return s.user.UpdateOrderStatusById(ctx, id, status, caller.Email)
	default:
		return nil, roleErr(caller)
	}
}

func (s *orderService) DeleteOrderById(ctx context.Context, caller domain.Identity, id int64) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.admin.DeleteOrderById(ctx, id)
	case domain.RoleUser:
		return s.user.DeleteOrderById(ctx, id, caller.Email)
	default:
		return roleErr(caller)
	}
}

func roleErr(caller domain.Identity) error {
	return fmt.Errorf("role %q: %w", caller.Role, domain.ErrAccessDenied)
}
