package service

import (
	"context"
	"fmt"

	"order-service/internal/domain"
	"order-service/internal/repo"

	"github.com/shopspring/decimal"
)

// ItemPage mirrors the paged catalog listing.
type ItemPage struct {
	Items         []domain.Item
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

type ItemService interface {
	GetById(ctx context.Context, id int64) (*domain.Item, error)
	GetAll(ctx context.Context, page, size int) (*ItemPage, error)
	// Create and Delete require the admin role; the gate is checked before
	// any database access.
	Create(ctx context.Context, caller domain.Identity, name string, price decimal.Decimal) (*domain.Item, error)
	Delete(ctx context.Context, caller domain.Identity, id int64) error
}

type itemService struct {
	itemRepo repo.ItemRepo
}

func NewItemService(itemRepo repo.ItemRepo) ItemService {
	return &itemService{itemRepo: itemRepo}
}

func (s *itemService) GetById(ctx context.Context, id int64) (*domain.Item, error) {
	return s.itemRepo.FindById(ctx, id)
}

func (s *itemService) GetAll(ctx context.Context, page, size int) (*ItemPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	items, total, err := s.itemRepo.FindPage(ctx, page, size)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	return &ItemPage{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func (s *itemService) Create(ctx context.Context, caller domain.Identity, name string, price decimal.Decimal) (*domain.Item, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("create item: %w", domain.ErrAccessDenied)
	}

	exists, err := s.itemRepo.ExistsByNameAndPrice(ctx, name, price)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.AlreadyExistsError{Name: name, Price: price}
	}

	item := &domain.Item{Name: name, Price: price}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("delete item: %w", domain.ErrAccessDenied)
	}

	exists, err := s.itemRepo.ExistsById(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("item with id %d: %w", id, domain.ErrNotFound)
	}
	return s.itemRepo.Delete(ctx, id)
}
