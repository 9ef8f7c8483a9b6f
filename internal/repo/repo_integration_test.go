package repo

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"order-service/internal/database"
	"order-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// These tests run against a throwaway postgres container. Set ORDER_IT=1 to
// enable them; they are skipped in plain unit runs.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("ORDER_IT") == "" {
		t.Skip("set ORDER_IT=1 to run container-backed repository tests")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("orders"),
		tcpostgres.WithPassword("orders"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../database/schema.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return db
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func TestItemRepoRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	items := NewItemRepo(db)
	ctx := context.Background()

	laptop := &domain.Item{Name: "Laptop", Price: decimal.RequireFromString("1200.00")}
	require.NoError(t, items.Create(ctx, laptop))
	require.NotZero(t, laptop.ID)

	router := &domain.Item{Name: "Router", Price: decimal.RequireFromString("200.00")}
	require.NoError(t, items.Create(ctx, router))

	found, err := items.FindById(ctx, laptop.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Laptop", found.Name)
	assert.True(t, found.Price.Equal(laptop.Price))

	missing, err := items.FindById(ctx, laptop.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := items.ExistsByNameAndPrice(ctx, "Laptop", decimal.RequireFromString("1200.00"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = items.ExistsByNameAndPrice(ctx, "Laptop", decimal.RequireFromString("999.99"))
	require.NoError(t, err)
	assert.False(t, exists)

	both, err := items.FindAllByIds(ctx, []int64{laptop.ID, router.ID, laptop.ID + 1000})
	require.NoError(t, err)
	assert.Len(t, both, 2)

	page, total, err := items.FindPage(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, int64(2), total)

	require.NoError(t, items.Delete(ctx, router.ID))
	exists, err = items.ExistsById(ctx, router.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrderRepoOwnershipAndLines(t *testing.T) {
	db := setupTestDB(t)
	items := NewItemRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()

	laptop := &domain.Item{Name: "Laptop", Price: decimal.RequireFromString("1200.00")}
	require.NoError(t, items.Create(ctx, laptop))

	order := &domain.Order{
		UserID:       1,
		Status:       domain.OrderNew,
		CreationDate: time.Now().UTC(),
		Lines: []domain.OrderLine{
			{ItemID: laptop.ID, Quantity: 2},
		},
	}
	inTx(t, db, func(tx *sql.Tx) error { return orders.Create(ctx, tx, order) })
	require.NotZero(t, order.ID)
	require.NotZero(t, order.Lines[0].ID)

	found, err := orders.FindById(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, 2, found.Lines[0].Quantity)
	assert.Equal(t, "Laptop", found.Lines[0].Item.Name)
	assert.True(t, found.Lines[0].Item.Price.Equal(laptop.Price))

	// owner-scoped lookups never see another user's order
	scoped, err := orders.FindByIdAndUserId(ctx, order.ID, 1)
	require.NoError(t, err)
	assert.NotNil(t, scoped)

	scoped, err = orders.FindByIdAndUserId(ctx, order.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, scoped)

	byStatus, err := orders.FindAllByStatuses(ctx, []domain.OrderStatus{domain.OrderNew, domain.OrderShipped})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	inTx(t, db, func(tx *sql.Tx) error {
		return orders.UpdateStatus(ctx, tx, order.ID, domain.OrderCancelled)
	})
	found, err = orders.FindById(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, found.Status)

	inTx(t, db, func(tx *sql.Tx) error { return orders.Delete(ctx, tx, order.ID) })
	found, err = orders.FindById(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	// cascade removed the lines too
	var lineCount int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT count(*) FROM order_lines").Scan(&lineCount))
	assert.Zero(t, lineCount)
}

func TestOutboxRepoFetchAndMark(t *testing.T) {
	db := setupTestDB(t)
	outbox := NewOutboxRepo(db)
	ctx := context.Background()

	inTx(t, db, func(tx *sql.Tx) error {
		return outbox.Insert(ctx, tx, "evt-1", "orders", "1", map[string]string{"type": "order.created"})
	})

	pending, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-1", pending[0].EventID)
	assert.Equal(t, "orders", pending[0].Topic)
	assert.JSONEq(t, `{"type":"order.created"}`, string(pending[0].Payload))
	assert.Nil(t, pending[0].SentAt)

	require.NoError(t, outbox.MarkSent(ctx, pending[0].ID))

	pending, err = outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
