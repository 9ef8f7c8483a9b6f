package repo

import (
	"context"
	"database/sql"
	"order-service/internal/domain"

	"github.com/shopspring/decimal"
)

type ItemRepo interface {
	FindById(ctx context.Context, id int64) (*domain.Item, error)
	// FindPage returns one page of items plus the total row count.
	FindPage(ctx context.Context, page, size int) ([]domain.Item, int64, error)
	FindAllByIds(ctx context.Context, ids []int64) ([]domain.Item, error)
	ExistsByNameAndPrice(ctx context.Context, name string, price decimal.Decimal) (bool, error)
	ExistsById(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
}

type itemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) ItemRepo {
	return &itemRepo{db: db}
}

func (r *itemRepo) FindById(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	err := r.db.QueryRowContext(ctx, "SELECT id, name, price FROM items WHERE id = $1", id).Scan(
		&item.ID,
		&item.Name,
		&item.Price,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindPage(ctx context.Context, page, size int) ([]domain.Item, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM items").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, price FROM items ORDER BY id LIMIT $1 OFFSET $2",
		size, page*size,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepo) FindAllByIds(ctx context.Context, ids []int64) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, price FROM items WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *itemRepo) ExistsByNameAndPrice(ctx context.Context, name string, price decimal.Decimal) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM items WHERE name = $1 AND price = $2)",
		name, price,
	).Scan(&exists)
	return exists, err
}

func (r *itemRepo) ExistsById(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", id,
	).Scan(&exists)
	return exists, err
}

func (r *itemRepo) Create(ctx context.Context, item *domain.Item) error {
	return r.db.QueryRowContext(ctx,
		"INSERT INTO items (name, price) VALUES ($1, $2) RETURNING id",
		item.Name, item.Price,
	).Scan(&item.ID)
}

func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	return err
}

func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
