package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
)

type BuyerRepository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID uuid.UUID) error
}

type CartRepository interface {
	// ListWithProducts returns the buyer's lines joined with the current
	// product price, stock and status.
	ListWithProducts(ctx context.Context, buyerID uuid.UUID) ([]domain.CartLine, error)
	Upsert(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, buyerID, productID uuid.UUID) error
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

type ProductRepository interface {
	// Get returns domain.ErrProductNotFound when there is no such product.
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	// DecrementStock lowers stock only if enough is left, otherwise it
	// returns domain.ErrStockDepleted.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type OrderRepository interface {
	// Create inserts the order row and fills in ID and CreatedAt. A taken
	// order number yields domain.ErrOrderNumberConflict.
	Create(ctx context.Context, o *domain.Order) error
	// CreateItems writes all items and the event atomically.
	CreateItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem, event outbox.Message) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	RecentForBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]domain.OrderSummary, error)
	RecentForSeller(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.OrderSummary, error)
}
