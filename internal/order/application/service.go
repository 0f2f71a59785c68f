package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
	"github.com/dmehra2102/artisan-marketplace/pkg/tracing"
)

const orderNumberAttempts = 3

type Service struct {
	log          *slog.Logger
	buyers       BuyerRepository
	carts        CartRepository
	products     ProductRepository
	orders       OrderRepository
	orderNumbers domain.OrderNumberFunc
	now          func() time.Time
}

type Option func(*Service)

func WithOrderNumbers(fn domain.OrderNumberFunc) Option {
	return func(s *Service) { s.orderNumbers = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(log *slog.Logger, buyers BuyerRepository, carts CartRepository, products ProductRepository, orders OrderRepository, opts ...Option) *Service {
	s := &Service{
		log:          log,
		buyers:       buyers,
		carts:        carts,
		products:     products,
		orders:       orders,
		orderNumbers: domain.NewOrderNumber,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PlaceOrderInput struct {
	ShippingAddress string
	ShippingMethod  string
	Phone           string
	PaymentMethod   string
}

type PlacedOrder struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
}

// PlaceOrder turns the actor's cart into an order. Once the order and its
// items are stored the call succeeds; the stock decrement and cart clear
// that follow are best-effort and only logged on failure.
func (s *Service) PlaceOrder(ctx context.Context, actor uuid.UUID, in PlaceOrderInput) (PlacedOrder, error) {
	if actor == uuid.Nil {
		return PlacedOrder{}, apperr.ErrUnauthorized
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return PlacedOrder{}, apperr.Validation("shipping address is required")
	}
	log := s.log.With("buyer_id", actor)

	s.ensureBuyer(ctx, log, actor)

	lines, err := s.carts.ListWithProducts(ctx, actor)
	if err != nil {
		log.WarnContext(ctx, "load cart failed", "err", err)
		return PlacedOrder{}, domain.ErrEmptyCart
	}
	if len(lines) == 0 {
		return PlacedOrder{}, domain.ErrEmptyCart
	}
	if err := domain.ValidateLines(lines); err != nil {
		return PlacedOrder{}, err
	}

	order := domain.NewOrder(actor, domain.ShippingDetails{
		Address:       strings.TrimSpace(in.ShippingAddress),
		Method:        in.ShippingMethod,
		Phone:         in.Phone,
		PaymentMethod: in.PaymentMethod,
	}, lines)

	if err := s.createOrder(ctx, log, &order); err != nil {
		return PlacedOrder{}, err
	}
	log = log.With("order_id", order.ID, "order_number", order.OrderNumber)

	if err := s.createItems(ctx, &order); err != nil {
		itemErr := &domain.OrderItemCreationError{OrderID: order.ID, Err: err}
		// The caller may already be gone; the order row must not outlive
		// its failed items.
		if rbErr := s.orders.Delete(context.WithoutCancel(ctx), order.ID); rbErr != nil {
			itemErr.RollbackErr = rbErr
			log.ErrorContext(ctx, "delete order after item failure", "err", rbErr)
		}
		log.ErrorContext(ctx, "create order items failed", "err", err)
		return PlacedOrder{}, itemErr
	}

	for _, item := range order.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.ErrorContext(ctx, "decrement stock failed",
				"product_id", item.ProductID, "quantity", item.Quantity, "err", err)
		}
	}
	if err := s.carts.Clear(ctx, actor); err != nil {
		log.WarnContext(ctx, "clear cart failed", "err", err)
	}

	log.InfoContext(ctx, "order placed", "total", order.Total.StringFixed(2), "items", len(order.Items))
	return PlacedOrder{OrderID: order.ID, OrderNumber: order.OrderNumber, Total: order.Total}, nil
}

// ensureBuyer makes sure a buyer profile row exists. A failed lookup is
// treated like a missing row; the create is idempotent on the store side.
func (s *Service) ensureBuyer(ctx context.Context, log *slog.Logger, actor uuid.UUID) {
	exists, err := s.buyers.Exists(ctx, actor)
	if err != nil {
		log.WarnContext(ctx, "buyer profile lookup failed", "err", err)
	}
	if exists {
		return
	}
	if err := s.buyers.Create(ctx, actor); err != nil {
		log.WarnContext(ctx, "create buyer profile failed", "err", err)
	}
}

// createOrder retries only when the generated order number is taken.
func (s *Service) createOrder(ctx context.Context, log *slog.Logger, order *domain.Order) error {
	var lastErr error
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumbers(s.now())
		err := s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrOrderNumberConflict) {
			log.ErrorContext(ctx, "create order failed", "attempt", attempt, "err", err)
			return &domain.OrderCreationError{Attempts: attempt, Err: err}
		}
		log.WarnContext(ctx, "order number collision", "attempt", attempt, "order_number", order.OrderNumber)
		lastErr = err
	}
	log.ErrorContext(ctx, "order numbers exhausted", "attempts", orderNumberAttempts)
	return &domain.OrderCreationError{Attempts: orderNumberAttempts, Err: lastErr}
}

func (s *Service) createItems(ctx context.Context, order *domain.Order) error {
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	payload, err := json.Marshal(domain.NewOrderPlaced(*order))
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	event := outbox.Message{
		AggregateType: domain.AggregateOrder,
		AggregateID:   order.ID.String(),
		Type:          domain.EventOrderPlaced,
		Payload:       payload,
		Headers:       map[string]string{"content-type": "application/json"},
		Traceparent:   tracing.Traceparent(ctx),
	}
	return s.orders.CreateItems(ctx, order.ID, order.Items, event)
}
