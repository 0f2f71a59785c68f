package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/promotion/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) StoreOf(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM stores WHERE owner_id = $1`, ownerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrNoStore
	}
	return id, err
}

func (r *Repository) ProductStore(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT store_id FROM products WHERE id = $1`, productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrProductNotFound
	}
	return id, err
}

func (r *Repository) Active(ctx context.Context) (domain.Pricing, error) {
	var p domain.Pricing
	err := r.pool.QueryRow(ctx, `
		SELECT id, price_per_day, min_days, max_days
		FROM promotion_pricing
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT 1`).Scan(&p.ID, &p.PricePerDay, &p.MinDays, &p.MaxDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Pricing{}, domain.ErrNoActivePricing
	}
	return p, err
}

func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT balance FROM credit_balances WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	return balance, err
}

// Debit is a single guarded update, so two concurrent debits can never take
// the balance below zero.
func (r *Repository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		UPDATE credit_balances
		SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance`, userID, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, domain.ErrBalanceChanged
	}
	return balance, err
}

func (r *Repository) Record(ctx context.Context, tx domain.CreditTransaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO credit_transactions (user_id, amount, type, description, product_id, duration_days)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.UserID, tx.Amount, tx.Type, tx.Description, tx.ProductID, tx.DurationDays)
	return err
}

func (r *Repository) Apply(ctx context.Context, productID uuid.UUID, start, end time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE products
		SET is_promoted = true, promoted_start_date = $2, promoted_end_date = $3
		WHERE id = $1`, productID, start, end)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrProductNotFound)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products
		SET is_promoted = false, promoted_start_date = NULL, promoted_end_date = NULL
		WHERE id = $1`, productID)
	return err
}
