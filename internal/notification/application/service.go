package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/notification/domain"
	orderdom "github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

const listLimit = 50

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// OnOrderPlaced tells every seller with products in the order about the
// sale, once per seller. Redelivered events do not create duplicates.
func (s *Service) OnOrderPlaced(ctx context.Context, ev orderdom.OrderPlaced) error {
	if len(ev.Items) == 0 {
		return nil
	}
	productIDs := make([]uuid.UUID, 0, len(ev.Items))
	for _, item := range ev.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	sellers, err := s.repo.SellersOf(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("resolve sellers: %w", err)
	}

	var order []uuid.UUID
	sales := map[uuid.UUID]*domain.SellerSale{}
	for _, item := range ev.Items {
		seller, ok := sellers[item.ProductID]
		if !ok {
			s.log.WarnContext(ctx, "ordered product has no seller", "order_id", ev.OrderID, "product_id", item.ProductID)
			continue
		}
		sale, ok := sales[seller]
		if !ok {
			sale = &domain.SellerSale{SellerID: seller, Amount: decimal.Zero}
			sales[seller] = sale
			order = append(order, seller)
		}
		sale.Units += item.Quantity
		sale.Amount = sale.Amount.Add(item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if len(order) == 0 {
		return nil
	}

	ns := make([]domain.Notification, 0, len(order))
	for _, seller := range order {
		ns = append(ns, domain.NewOrderNotification(ev.OrderID, ev.OrderNumber, *sales[seller]))
	}
	if err := s.repo.Insert(ctx, ns); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	s.log.InfoContext(ctx, "sellers notified", "order_id", ev.OrderID, "sellers", len(ns))
	return nil
}

func (s *Service) List(ctx context.Context, actor uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	if actor == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	ns, err := s.repo.List(ctx, actor, unreadOnly, listLimit)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

func (s *Service) MarkRead(ctx context.Context, actor, id uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	return s.repo.MarkRead(ctx, actor, id)
}
