package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

type Perspective string

const (
	AsBuyer  Perspective = "buyer"
	AsSeller Perspective = "seller"
)

func (s *Service) Cart(ctx context.Context, actor uuid.UUID) (domain.Cart, error) {
	if actor == uuid.Nil {
		return domain.Cart{}, apperr.ErrUnauthorized
	}
	lines, err := s.carts.ListWithProducts(ctx, actor)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(lines), nil
}

// SetCartQuantity adds the product to the cart or replaces the quantity of
// the existing line.
func (s *Service) SetCartQuantity(ctx context.Context, actor, productID uuid.UUID, quantity int) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	if quantity <= 0 {
		return apperr.Validation("quantity must be positive")
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Available() {
		return &domain.ProductUnavailableError{ProductID: product.ID, Name: product.Name}
	}
	if product.StockQuantity < quantity {
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.StockQuantity,
		}
	}
	return s.carts.Upsert(ctx, actor, productID, quantity)
}

func (s *Service) RemoveFromCart(ctx context.Context, actor, productID uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	return s.carts.Remove(ctx, actor, productID)
}

func (s *Service) ClearCart(ctx context.Context, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	return s.carts.Clear(ctx, actor)
}

// RecentOrders lists the newest orders the actor bought, or the newest
// orders containing products of the actor's store.
func (s *Service) RecentOrders(ctx context.Context, actor uuid.UUID, as Perspective, limit int) ([]domain.OrderSummary, error) {
	if actor == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	var (
		orders []domain.OrderSummary
		err    error
	)
	switch as {
	case AsBuyer, "":
		orders, err = s.orders.RecentForBuyer(ctx, actor, limit)
	case AsSeller:
		orders, err = s.orders.RecentForSeller(ctx, actor, limit)
	default:
		return nil, apperr.Validation("unknown perspective %q", as)
	}
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.OrderSummary{}
	}
	return orders, nil
}
