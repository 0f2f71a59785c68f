package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/artisan-marketplace/internal/notification/domain"
)

type Repository interface {
	// SellersOf maps each product to the owner of the store listing it.
	// Products that no longer exist are left out.
	SellersOf(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	// Insert skips notifications that already exist for the same user,
	// order and type.
	Insert(ctx context.Context, ns []domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error)
	// MarkRead returns domain.ErrNotFound unless the notification belongs
	// to userID.
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}
