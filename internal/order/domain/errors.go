package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

var (
	ErrEmptyCart       = apperr.New(apperr.KindBusinessRule, "your cart is empty")
	ErrProductNotFound = apperr.New(apperr.KindNotFound, "product not found")

	// ErrOrderNumberConflict is returned by the order store when the
	// generated order number is already taken.
	ErrOrderNumberConflict = errors.New("order number already exists")
	// ErrStockDepleted is returned when a guarded stock decrement finds less
	// stock than requested.
	ErrStockDepleted = errors.New("stock lower than requested quantity")
)

type ProductUnavailableError struct {
	ProductID uuid.UUID
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available for purchase", e.label())
}

func (e *ProductUnavailableError) Kind() apperr.Kind { return apperr.KindBusinessRule }

func (e *ProductUnavailableError) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ProductID.String()
}

type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("not enough stock for %q: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Kind() apperr.Kind { return apperr.KindBusinessRule }

type OrderCreationError struct {
	Attempts int
	Err      error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("create order after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *OrderCreationError) Unwrap() error     { return e.Err }
func (e *OrderCreationError) Kind() apperr.Kind { return apperr.KindInternal }
func (e *OrderCreationError) Public() string {
	return "we could not create your order, please try again"
}

// OrderItemCreationError means the order row was written but its items were
// not. RollbackErr is set when deleting the order row failed as well.
type OrderItemCreationError struct {
	OrderID     uuid.UUID
	Err         error
	RollbackErr error
}

func (e *OrderItemCreationError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("create items for order %s: %v (rollback failed: %v)", e.OrderID, e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("create items for order %s: %v", e.OrderID, e.Err)
}

func (e *OrderItemCreationError) Unwrap() error     { return e.Err }
func (e *OrderItemCreationError) Kind() apperr.Kind { return apperr.KindInternal }
func (e *OrderItemCreationError) Public() string {
	return "we could not save your order items, please try again"
}
