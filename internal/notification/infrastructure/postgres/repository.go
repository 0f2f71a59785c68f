package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/artisan-marketplace/internal/notification/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SellersOf(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, s.owner_id
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sellers := make(map[uuid.UUID]uuid.UUID, len(productIDs))
	for rows.Next() {
		var product, owner uuid.UUID
		if err := rows.Scan(&product, &owner); err != nil {
			return nil, err
		}
		sellers[product] = owner
	}
	return sellers, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, ns []domain.Notification) error {
	batch := &pgx.Batch{}
	for _, n := range ns {
		batch.Queue(`
			INSERT INTO notifications (user_id, type, title, body, order_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, order_id, type) DO NOTHING`,
			n.UserID, n.Type, n.Title, n.Body, n.OrderID)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, title, body, order_id, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3`, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.OrderID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
