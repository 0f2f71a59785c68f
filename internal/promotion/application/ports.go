package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/promotion/domain"
)

type StoreRepository interface {
	// StoreOf returns domain.ErrNoStore when the user owns no store.
	StoreOf(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)
	// ProductStore returns domain.ErrProductNotFound for unknown products.
	ProductStore(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
}

type PricingRepository interface {
	// Active returns domain.ErrNoActivePricing when nothing is active.
	Active(ctx context.Context) (domain.Pricing, error)
}

type CreditRepository interface {
	// Balance is zero for users without a balance row.
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	// Debit subtracts amount only if the balance covers it and returns the
	// new balance, or domain.ErrBalanceChanged.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Record(ctx context.Context, tx domain.CreditTransaction) error
}

type PromotionRepository interface {
	Apply(ctx context.Context, productID uuid.UUID, start, end time.Time) error
	Clear(ctx context.Context, productID uuid.UUID) error
}
