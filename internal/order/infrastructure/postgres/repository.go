package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
)

const orderNumberConstraint = "orders_order_number_key"

type OrderRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOrderRepository(log *slog.Logger, pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{log: log, pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, order_number, status, payment_method, shipping_method,
		                    shipping_address, shipping_phone, subtotal, shipping_cost, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		o.BuyerID, o.OrderNumber, o.Status, o.PaymentMethod, o.ShippingMethod,
		o.ShippingAddress, o.ShippingPhone, o.Subtotal, o.ShippingCost, o.Tax, o.Total,
	).Scan(&o.ID, &o.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == orderNumberConstraint {
		return domain.ErrOrderNumberConflict
	}
	return err
}

// CreateItems stores the items and the outbox event in one transaction:
// either the order is complete and announced, or neither happened.
func (r *OrderRepository) CreateItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem, event outbox.Message) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4)`,
			orderID, item.ProductID, item.Quantity, item.PriceAtPurchase)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	if err := outbox.Insert(ctx, tx, event); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) Delete(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	return err
}

func (r *OrderRepository) RecentForBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	return r.recent(ctx, `SELECT * FROM buyer_recent_orders($1, $2)`, buyerID, limit)
}

func (r *OrderRepository) RecentForSeller(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	return r.recent(ctx, `SELECT * FROM seller_recent_orders($1, $2)`, ownerID, limit)
}

func (r *OrderRepository) recent(ctx context.Context, query string, actor uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	rows, err := r.pool.Query(ctx, query, actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.OrderSummary{}
	for rows.Next() {
		var (
			o      domain.OrderSummary
			status string
		)
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.BuyerID, &status, &o.Total, &o.ItemCount, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
