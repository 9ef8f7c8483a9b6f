package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, raw := range []string{"NEW", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"} {
		status, err := ParseOrderStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, OrderStatus(raw), status)
	}

	for _, raw := range []string{"", "new", "DONE", "CANCELED"} {
		_, err := ParseOrderStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestItemsNotFoundErrorSortsIds(t *testing.T) {
	err := &ItemsNotFoundError{MissingIDs: []int64{30, 2, 11}}

	assert.Equal(t, "items not found: 2, 11, 30", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	// sorting works on a copy
	assert.Equal(t, []int64{30, 2, 11}, err.MissingIDs)
}

func TestStatusNotAllowedMatchesAccessDenied(t *testing.T) {
	err := &StatusNotAllowedError{Status: OrderShipped}

	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Contains(t, err.Error(), "SHIPPED")
}

func TestNotFoundUserSentinel(t *testing.T) {
	sentinel := NotFoundUser()

	assert.False(t, sentinel.Resolved())
	assert.Equal(t, NotFoundUserName, sentinel.Name)

	id := int64(1)
	assert.True(t, (&UserProfile{ID: &id}).Resolved())
	assert.False(t, (*UserProfile)(nil).Resolved())
}

func TestIdentityRoles(t *testing.T) {
	assert.True(t, Identity{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Identity{Role: RoleUser}.IsAdmin())
	assert.False(t, Identity{}.IsAdmin())
}
