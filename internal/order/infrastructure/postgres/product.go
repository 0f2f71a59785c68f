package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var (
		p      domain.Product
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, store_id, name, price, stock_quantity, status
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.StockQuantity, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	p.Status = domain.ProductStatus(status)
	return p, nil
}

// DecrementStock never drives stock below zero, even under concurrent
// checkouts of the same product.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`, id, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrStockDepleted
	}
	return nil
}
