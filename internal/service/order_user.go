package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"order-service/internal/domain"
	"order-service/internal/repo"
	"order-service/internal/userapi"
)

// UserOrderService scopes every operation to orders owned by the user
// resolved from the caller's authenticated email. Foreign orders look absent
// rather than forbidden, so their existence never leaks.
type UserOrderService interface {
	GetOrderById(ctx context.Context, id int64, email string) (*OrderUserResult, error)
	GetOrdersByIds(ctx context.Context, ids []int64, email string) ([]OrderUserResult, error)
	GetOrdersByStatuses(ctx context.Context, statuses []domain.OrderStatus, email string) ([]OrderUserResult, error)
	CreateOrder(ctx context.Context, lines []CreateOrderLine, email string) (*OrderUserResult, error)
	UpdateOrderStatusById(ctx context.Context, id int64, status domain.OrderStatus, email string) (*OrderUserResult, error)
	DeleteOrderById(ctx context.Context, id int64, email string) error
}

type userOrderService struct {
	orderRepo repo.OrderRepo
	creator   OrderCreator
	users     userapi.Client
	mutator   *orderMutator
}

func NewUserOrderService(db *sql.DB, orderRepo repo.OrderRepo, outbox repo.OutboxRepo, creator OrderCreator, users userapi.Client, topic string) UserOrderService {
	return &userOrderService{
		orderRepo: orderRepo,
		creator:   creator,
		users:     users,
		mutator:   &orderMutator{db: db, orderRepo: orderRepo, outbox: outbox, topic: topic, now: time.Now},
	}
}

func (s *userOrderService) GetOrderById(ctx context.Context, id int64, email string) (*OrderUserResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIdAndUserId(ctx, id, *user.ID)
	if err != nil || order == nil {
		return nil, err
	}
	return &OrderUserResult{Order: *order, User: user}, nil
}

func (s *userOrderService) GetOrdersByIds(ctx context.Context, ids []int64, email string) ([]OrderUserResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAllByIdsAndUserId(ctx, ids, *user.ID)
	if err != nil {
		return nil, err
	}
	return joinSingleUser(orders, user), nil
}

func (s *userOrderService) GetOrdersByStatuses(ctx context.Context, statuses []domain.OrderStatus, email string) ([]OrderUserResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAllByStatusesAndUserId(ctx, statuses, *user.ID)
	if err != nil {
		return nil, err
	}
	return joinSingleUser(orders, user), nil
}

func (s *userOrderService) CreateOrder(ctx context.Context, lines []CreateOrderLine, email string) (*OrderUserResult, error) {
	// The authenticated caller is always the owner; any caller-supplied
	// target user id was discarded at the boundary.
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.creator.CreateFromRequestAndUser(ctx, lines, user)
}

func (s *userOrderService) UpdateOrderStatusById(ctx context.Context, id int64, status domain.OrderStatus, email string) (*OrderUserResult, error) {
	// Checked before any database or directory access.
	if status != domain.OrderCancelled {
		return nil, &domain.StatusNotAllowedError{Status: status}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIdAndUserId(ctx, id, *user.ID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}

	if err := s.mutator.updateStatus(ctx, order, status); err != nil {
		return nil, err
	}
	return &OrderUserResult{Order: *order, User: user}, nil
}

func (s *userOrderService) DeleteOrderById(ctx context.Context, id int64, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByIdAndUserId(ctx, id, *user.ID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order with id %d and user id %d: %w", id, *user.ID, domain.ErrNotFound)
	}
	return s.mutator.delete(ctx, order)
}

func joinSingleUser(orders []domain.Order, user *domain.UserProfile) []OrderUserResult {
	results := make([]OrderUserResult, 0, len(orders))
	for _, order := range orders {
		results = append(results, OrderUserResult{Order: order, User: user})
	}
	return results
}
