package repo

import (
	"context"
	"database/sql"
	"order-service/internal/domain"
)

type OrderRepo interface {
	// Create persists the order and all of its lines in the given tx.
	// The assigned ids are written back to the aggregate.
	Create(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	FindById(ctx context.Context, id int64) (*domain.Order, error)
	// FindByIdAndUserId scopes the lookup to the owner in SQL, so a
	// mismatched caller cannot tell a foreign order from a missing one.
	FindByIdAndUserId(ctx context.Context, id, userId int64) (*domain.Order, error)
	FindAllByIds(ctx context.Context, ids []int64) ([]domain.Order, error)
	FindAllByIdsAndUserId(ctx context.Context, ids []int64, userId int64) ([]domain.Order, error)
	FindAllByStatuses(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	FindAllByStatusesAndUserId(ctx context.Context, statuses []domain.OrderStatus, userId int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error
	ExistsById(ctx context.Context, id int64) (bool, error)
	ExistsByIdAndUserId(ctx context.Context, id, userId int64) (bool, error)
	// Delete removes the order; lines go with it via cascade.
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	err := tx.QueryRowContext(ctx,
		"INSERT INTO orders (user_id, status, creation_date) VALUES ($1, $2, $3) RETURNING id",
		order.UserID, order.Status, order.CreationDate,
	).Scan(&order.ID)
	if err != nil {
		return err
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		err := tx.QueryRowContext(ctx,
			"INSERT INTO order_lines (order_id, item_id, quantity) VALUES ($1, $2, $3) RETURNING id",
			order.ID, line.ItemID, line.Quantity,
		).Scan(&line.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) FindById(ctx context.Context, id int64) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE id = $1", id)
}

func (r *orderRepo) FindByIdAndUserId(ctx context.Context, id, userId int64) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE id = $1 AND user_id = $2", id, userId)
}

func (r *orderRepo) findOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.CreationDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAllByIds(ctx context.Context, ids []int64) ([]domain.Order, error) {
	return r.findMany(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE id = ANY($1) ORDER BY id", ids)
}

func (r *orderRepo) FindAllByIdsAndUserId(ctx context.Context, ids []int64, userId int64) ([]domain.Order, error) {
	return r.findMany(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE id = ANY($1) AND user_id = $2 ORDER BY id", ids, userId)
}

func (r *orderRepo) FindAllByStatuses(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return r.findMany(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE status = ANY($1) ORDER BY id", statusStrings(statuses))
}

func (r *orderRepo) FindAllByStatusesAndUserId(ctx context.Context, statuses []domain.OrderStatus, userId int64) ([]domain.Order, error) {
	return r.findMany(ctx, "SELECT id, user_id, status, creation_date FROM orders WHERE status = ANY($1) AND user_id = $2 ORDER BY id", statusStrings(statuses), userId)
}

func (r *orderRepo) findMany(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.CreationDate); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadLines(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadLines fetches the lines of all given orders in one query and attaches
// them to their aggregates.
func (r *orderRepo) loadLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byId := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		byId[order.ID] = order
		ids = append(ids, order.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.order_id, l.item_id, l.quantity, i.name, i.price
		FROM order_lines l
		JOIN items i ON i.id = l.item_id
		WHERE l.order_id = ANY($1)
		ORDER BY l.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line    domain.OrderLine
			orderId int64
		)
		if err := rows.Scan(&line.ID, &orderId, &line.ItemID, &line.Quantity, &line.Item.Name, &line.Item.Price); err != nil {
			return err
		}
		line.Item.ID = line.ItemID
		if order, ok := byId[orderId]; ok {
			order.Lines = append(order.Lines, line)
		}
	}
	return rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *orderRepo) ExistsById(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id,
	).Scan(&exists)
	return exists, err
}

func (r *orderRepo) ExistsByIdAndUserId(ctx context.Context, id, userId int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND user_id = $2)", id, userId,
	).Scan(&exists)
	return exists, err
}

func (r *orderRepo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	return err
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
