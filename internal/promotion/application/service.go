package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/promotion/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

type Service struct {
	log        *slog.Logger
	stores     StoreRepository
	pricing    PricingRepository
	credits    CreditRepository
	promotions PromotionRepository
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(log *slog.Logger, stores StoreRepository, pricing PricingRepository, credits CreditRepository, promotions PromotionRepository, opts ...Option) *Service {
	s := &Service{
		log:        log,
		stores:     stores,
		pricing:    pricing,
		credits:    credits,
		promotions: promotions,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PromoteProduct charges the seller pricePerDay*days credits and marks the
// product promoted from now for that many days. The debit is final: if
// marking the product fails afterwards the credits stay spent.
func (s *Service) PromoteProduct(ctx context.Context, actor, productID uuid.UUID, days int) (domain.Result, error) {
	if err := s.authorize(ctx, actor, productID); err != nil {
		return domain.Result{}, err
	}
	if days <= 0 {
		return domain.Result{}, apperr.Validation("days must be a positive whole number")
	}

	pricing, err := s.pricing.Active(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePricing) {
			return domain.Result{}, err
		}
		return domain.Result{}, fmt.Errorf("load promotion pricing: %w", err)
	}
	if !pricing.Allows(days) {
		return domain.Result{}, apperr.Validation("promotion must run between %d and %d days", pricing.MinDays, pricing.MaxDays)
	}
	cost := pricing.Cost(days)
	log := s.log.With("user_id", actor, "product_id", productID, "days", days, "cost", cost.StringFixed(2))

	balance, err := s.credits.Balance(ctx, actor)
	if err != nil {
		return domain.Result{}, fmt.Errorf("load credit balance: %w", err)
	}
	if balance.LessThan(cost) {
		return domain.Result{}, &domain.InsufficientCreditsError{Required: cost, Available: balance}
	}

	newBalance := balance
	// A free promotion touches no balance row; the seller may not have one.
	if cost.IsPositive() {
		newBalance, err = s.credits.Debit(ctx, actor, cost)
	}
	if errors.Is(err, domain.ErrBalanceChanged) {
		// Spent elsewhere between the read and the debit.
		current, readErr := s.credits.Balance(ctx, actor)
		if readErr != nil {
			current = decimal.Zero
		}
		return domain.Result{}, &domain.InsufficientCreditsError{Required: cost, Available: current}
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("debit credits: %w", err)
	}
	log.InfoContext(ctx, "credits debited", "new_balance", newBalance.StringFixed(2))

	if err := s.credits.Record(ctx, domain.CreditTransaction{
		UserID:       actor,
		Amount:       cost.Neg(),
		Type:         domain.TransactionPromotion,
		Description:  fmt.Sprintf("Product promotion for %d days", days),
		ProductID:    productID,
		DurationDays: days,
	}); err != nil {
		log.WarnContext(ctx, "record credit transaction failed", "err", err)
	}

	window := domain.NewWindow(s.now(), days)
	if err := s.promotions.Apply(ctx, productID, *window.Start, *window.End); err != nil {
		log.ErrorContext(ctx, "apply promotion failed after debit", "err", err)
		return domain.Result{}, &domain.PromotionApplyError{ProductID: productID, Err: err}
	}

	return domain.Result{NewBalance: newBalance, PromotedUntil: *window.End}, nil
}

// Unpromote ends a promotion early. Nothing is refunded.
func (s *Service) Unpromote(ctx context.Context, actor, productID uuid.UUID) error {
	if err := s.authorize(ctx, actor, productID); err != nil {
		return err
	}
	if err := s.promotions.Clear(ctx, productID); err != nil {
		return fmt.Errorf("clear promotion: %w", err)
	}
	return nil
}

func (s *Service) Balance(ctx context.Context, actor uuid.UUID) (decimal.Decimal, error) {
	if actor == uuid.Nil {
		return decimal.Zero, apperr.ErrUnauthorized
	}
	return s.credits.Balance(ctx, actor)
}

// authorize requires the actor to own the store the product is listed in.
// Unknown products are reported as forbidden too.
func (s *Service) authorize(ctx context.Context, actor, productID uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	storeID, err := s.stores.StoreOf(ctx, actor)
	if errors.Is(err, domain.ErrNoStore) {
		return apperr.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	productStore, err := s.stores.ProductStore(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		return apperr.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if productStore != storeID {
		return apperr.ErrForbidden
	}
	return nil
}
