package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound covers missing items, orders and unresolved users.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied covers unrecognized roles and privileged operations
	// attempted without the admin role.
	ErrAccessDenied = errors.New("access denied")
)

// AlreadyExistsError reports a duplicate item on (name, price).
type AlreadyExistsError struct {
	Name  string
	Price decimal.Decimal
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("item with name %q and price %s already exists", e.Name, e.Price)
}

// ItemsNotFoundError reports order-creation requests referencing unknown
// item ids. No partial order is ever written.
type ItemsNotFoundError struct {
	MissingIDs []int64
}

func (e *ItemsNotFoundError) Error() string {
	missing := slices.Clone(e.MissingIDs)
	slices.Sort(missing)
	ids := make([]string, len(missing))
	for i, id := range missing {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return "items not found: " + strings.Join(ids, ", ")
}

func (e *ItemsNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StatusNotAllowedError reports a non-admin caller requesting a status
// transition other than CANCELLED.
type StatusNotAllowedError struct {
	Status OrderStatus
}

func (e *StatusNotAllowedError) Error() string {
	return fmt.Sprintf("status modification to %s is not allowed", e.Status)
}

func (e *StatusNotAllowedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// UpstreamError carries a non-404 HTTP failure from the user directory so
// the boundary can surface the upstream's own status code.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("user directory returned status %d", e.StatusCode)
}
