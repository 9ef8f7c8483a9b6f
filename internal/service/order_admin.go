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

// AdminOrderService operates over the entire order space with no ownership
// filter.
type AdminOrderService interface {
	GetOrderById(ctx context.Context, id int64) (*OrderUserResult, error)
	GetOrdersByIds(ctx context.Context, ids []int64) ([]OrderUserResult, error)
	GetOrdersByStatuses(ctx context.Context, statuses []domain.OrderStatus) ([]OrderUserResult, error)
	// CreateOrder resolves the explicit target user by id; an unresolved
	// id fails with not-found before anything is written.
	CreateOrder(ctx context.Context, targetUserId int64, lines []CreateOrderLine) (*OrderUserResult, error)
	UpdateOrderStatusById(ctx context.Context, id int64, status domain.OrderStatus) (*OrderUserResult, error)
	DeleteOrderById(ctx context.Context, id int64) error
}

type adminOrderService struct {
	db        *sql.DB
	orderRepo repo.OrderRepo
	creator   OrderCreator
	users     userapi.Client
	mutator   *orderMutator
}

func NewAdminOrderService(db *sql.DB, orderRepo repo.OrderRepo, outbox repo.OutboxRepo, creator OrderCreator, users userapi.Client, topic string) AdminOrderService {
	return &adminOrderService{
		db:        db,
		orderRepo: orderRepo,
		creator:   creator,
		users:     users,
		mutator:   &orderMutator{db: db, orderRepo: orderRepo, outbox: outbox, topic: topic, now: time.Now},
	}
}

func (s *adminOrderService) GetOrderById(ctx context.Context, id int64) (*OrderUserResult, error) {
	order, err := s.orderRepo.FindById(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}
	return s.fetchUserThenJoin(ctx, order)
}

func (s *adminOrderService) GetOrdersByIds(ctx context.Context, ids []int64) ([]OrderUserResult, error) {
	orders, err := s.orderRepo.FindAllByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.joinUsers(ctx, orders)
}

func (s *adminOrderService) GetOrdersByStatuses(ctx context.Context, statuses []domain.OrderStatus) ([]OrderUserResult, error) {
	orders, err := s.orderRepo.FindAllByStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}
	return s.joinUsers(ctx, orders)
}

func (s *adminOrderService) CreateOrder(ctx context.Context, targetUserId int64, lines []CreateOrderLine) (*OrderUserResult, error) {
	user, err := s.users.GetUserByID(ctx, targetUserId)
	if err != nil {
		return nil, err
	}
	if !user.Resolved() {
		return nil, fmt.Errorf("user with id %d: %w", targetUserId, domain.ErrNotFound)
	}
	return s.creator.CreateFromRequestAndUser(ctx, lines, user)
}

func (s *adminOrderService) UpdateOrderStatusById(ctx context.Context, id int64, status domain.OrderStatus) (*OrderUserResult, error) {
	order, err := s.orderRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}

	if err := s.mutator.updateStatus(ctx, order, status); err != nil {
		return nil, err
	}
	return s.fetchUserThenJoin(ctx, order)
}

func (s *adminOrderService) DeleteOrderById(ctx context.Context, id int64) error {
	order, err := s.orderRepo.FindById(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}
	return s.mutator.delete(ctx, order)
}

func (s *adminOrderService) fetchUserThenJoin(ctx context.Context, order *domain.Order) (*OrderUserResult, error) {
	user, err := s.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	return &OrderUserResult{Order: *order, User: user}, nil
}

// joinUsers enriches a batch with one directory lookup per distinct owner.
func (s *adminOrderService) joinUsers(ctx context.Context, orders []domain.Order) ([]OrderUserResult, error) {
	usersById := make(map[int64]*domain.UserProfile)
	for _, order := range orders {
		if _, ok := usersById[order.UserID]; ok {
			continue
		}
		user, err := s.users.GetUserByID(ctx, order.UserID)
		if err != nil {
			return nil, err
		}
		usersById[order.UserID] = user
	}

	results := make([]OrderUserResult, 0, len(orders))
	for _, order := range orders {
		user := usersById[order.UserID]
		if user == nil {
			continue
		}
		results = append(results, OrderUserResult{Order: order, User: user})
	}
	return results, nil
}
