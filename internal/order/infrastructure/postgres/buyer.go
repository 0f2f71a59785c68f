package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BuyerRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewBuyerRepository(log *slog.Logger, pool *pgxpool.Pool) *BuyerRepository {
	return &BuyerRepository{log: log, pool: pool}
}

func (r *BuyerRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM buyers WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

// Create is a no-op when the profile already exists, so concurrent first
// checkouts of the same buyer do not fail each other.
func (r *BuyerRepository) Create(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO buyers (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}
