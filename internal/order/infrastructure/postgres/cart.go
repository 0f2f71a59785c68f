package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
)

type CartRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCartRepository(log *slog.Logger, pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{log: log, pool: pool}
}

func (r *CartRepository) ListWithProducts(ctx context.Context, buyerID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.product_id, c.quantity,
		       p.store_id, p.name, p.price, p.stock_quantity, p.status
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1
		ORDER BY c.created_at, c.product_id`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var (
			line   domain.CartLine
			status string
		)
		if err := rows.Scan(&line.ProductID, &line.Quantity,
			&line.Product.StoreID, &line.Product.Name, &line.Product.Price,
			&line.Product.StockQuantity, &status); err != nil {
			return nil, err
		}
		line.BuyerID = buyerID
		line.Product.ID = line.ProductID
		line.Product.Status = domain.ProductStatus(status)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *CartRepository) Upsert(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (buyer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		buyerID, productID, quantity)
	return err
}

func (r *CartRepository) Remove(ctx context.Context, buyerID, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1 AND product_id = $2`, buyerID, productID)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, buyerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, buyerID)
	return err
}
