package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"order-service/internal/domain"
	"order-service/internal/repo"

	"github.com/shopspring/decimal"
)

// The services open real transactions around their repos; the stub driver
// hands out no-op transactions so the fakes below can stand in for the
// database.

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", stubDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicetest", "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeItemRepo struct {
	items  map[int64]domain.Item
	nextID int64
}

func newFakeItemRepo(items ...domain.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[int64]domain.Item), nextID: 1}
	for _, item := range items {
		r.items[item.ID] = item
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
	}
	return r
}

func (r *fakeItemRepo) FindById(_ context.Context, id int64) (*domain.Item, error) {
	if item, ok := r.items[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (r *fakeItemRepo) FindPage(_ context.Context, page, size int) ([]domain.Item, int64, error) {
	var all []domain.Item
	for _, item := range r.items {
		all = append(all, item)
	}
	slices.SortFunc(all, func(a, b domain.Item) int { return int(a.ID - b.ID) })

	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeItemRepo) FindAllByIds(_ context.Context, ids []int64) ([]domain.Item, error) {
	var found []domain.Item
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

func (r *fakeItemRepo) ExistsByNameAndPrice(_ context.Context, name string, price decimal.Decimal) (bool, error) {
	for _, item := range r.items {
		if item.Name == name && item.Price.Equal(price) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepo) ExistsById(_ context.Context, id int64) (bool, error) {
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.Item) error {
	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

type fakeOrderRepo struct {
	orders map[int64]*domain.Order
	nextID int64
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[int64]*domain.Order), nextID: 1}
	for _, order := range orders {
		r.orders[order.ID] = order
		if order.ID >= r.nextID {
			r.nextID = order.ID + 1
		}
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, _ *sql.Tx, order *domain.Order) error {
	order.ID = r.nextID
	r.nextID++
	for i := range order.Lines {
		order.Lines[i].ID = int64(i + 1)
	}
	stored := *order
	stored.Lines = slices.Clone(order.Lines)
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) FindById(_ context.Context, id int64) (*domain.Order, error) {
	if order, ok := r.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByIdAndUserId(_ context.Context, id, userId int64) (*domain.Order, error) {
	if order, ok := r.orders[id]; ok && order.UserID == userId {
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindAllByIds(_ context.Context, ids []int64) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool { return slices.Contains(ids, o.ID) }), nil
}

func (r *fakeOrderRepo) FindAllByIdsAndUserId(_ context.Context, ids []int64, userId int64) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool {
		return slices.Contains(ids, o.ID) && o.UserID == userId
	}), nil
}

func (r *fakeOrderRepo) FindAllByStatuses(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool { return slices.Contains(statuses, o.Status) }), nil
}

func (r *fakeOrderRepo) FindAllByStatusesAndUserId(_ context.Context, statuses []domain.OrderStatus, userId int64) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool {
		return slices.Contains(statuses, o.Status) && o.UserID == userId
	}), nil
}

func (r *fakeOrderRepo) collect(keep func(*domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, order := range r.orders {
		if keep(order) {
			out = append(out, *order)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return int(a.ID - b.ID) })
	return out
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ *sql.Tx, id int64, status domain.OrderStatus) error {
	if order, ok := r.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (r *fakeOrderRepo) ExistsById(_ context.Context, id int64) (bool, error) {
	_, ok := r.orders[id]
	return ok, nil
}

func (r *fakeOrderRepo) ExistsByIdAndUserId(_ context.Context, id, userId int64) (bool, error) {
	order, ok := r.orders[id]
	return ok && order.UserID == userId, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	delete(r.orders, id)
	return nil
}

type outboxEntry struct {
	EventID string
	Topic   string
	Key     string
	Payload json.RawMessage
}

type fakeOutboxRepo struct {
	entries []outboxEntry
}

func (r *fakeOutboxRepo) Insert(_ context.Context, _ *sql.Tx, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.entries = append(r.entries, outboxEntry{EventID: eventID, Topic: topic, Key: key, Payload: data})
	return nil
}

func (r *fakeOutboxRepo) FetchPending(_ context.Context, _ int) ([]repo.OutboxRecord, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkSent(_ context.Context, _ int64) error {
	return nil
}

type fakeUserClient struct {
	byID    map[int64]*domain.UserProfile
	byEmail map[string]*domain.UserProfile

	idCalls    int
	emailCalls int
	emailErr   error
}

func newFakeUserClient() *fakeUserClient {
	return &fakeUserClient{
		byID:    make(map[int64]*domain.UserProfile),
		byEmail: make(map[string]*domain.UserProfile),
	}
}

func (c *fakeUserClient) add(id int64, email string) *domain.UserProfile {
	user := &domain.UserProfile{ID: &id, Name: "user", Email: email}
	c.byID[id] = user
	if email != "" {
		c.byEmail[email] = user
	}
	return user
}

func (c *fakeUserClient) GetUserByID(_ context.Context, id int64) (*domain.UserProfile, error) {
	c.idCalls++
	if user, ok := c.byID[id]; ok {
		return user, nil
	}
	// directory 404s resolve to the sentinel profile
	return domain.NotFoundUser(), nil
}

func (c *fakeUserClient) GetUserByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	c.emailCalls++
	if c.emailErr != nil {
		return nil, c.emailErr
	}
	if user, ok := c.byEmail[email]; ok {
		return user, nil
	}
	return nil, &domain.UpstreamError{StatusCode: 404}
}
