package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/artisan-marketplace/internal/auth"
	"github.com/dmehra2102/artisan-marketplace/internal/order/application"
	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/internal/platform/httpx"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

type Service interface {
	PlaceOrder(ctx context.Context, actor uuid.UUID, in application.PlaceOrderInput) (application.PlacedOrder, error)
	RecentOrders(ctx context.Context, actor uuid.UUID, as application.Perspective, limit int) ([]domain.OrderSummary, error)
	Cart(ctx context.Context, actor uuid.UUID) (domain.Cart, error)
	SetCartQuantity(ctx context.Context, actor, productID uuid.UUID, quantity int) error
	RemoveFromCart(ctx context.Context, actor, productID uuid.UUID) error
	ClearCart(ctx context.Context, actor uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type placeOrderReq struct {
	ShippingAddress string `json:"shippingAddress"`
	ShippingMethod  string `json:"shippingMethod"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"paymentMethod"`
}

type setCartReq struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func (h *Handler) Routes(placeOrder ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r, placeOrder...)
	return r
}

// Register adds the order and cart endpoints to r. placeOrder wraps only
// POST /orders, which is where idempotency keys apply.
func (h *Handler) Register(r chi.Router, placeOrder ...func(http.Handler) http.Handler) {
	r.With(placeOrder...).Post("/orders", h.placeOrder)
	r.Get("/orders/recent", h.recentOrders)

	r.Get("/cart", h.getCart)
	r.Post("/cart", h.setCart)
	r.Delete("/cart", h.clearCart)
	r.Delete("/cart/{productID}", h.removeFromCart)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	httpx.WriteError(w, r, h.log, err)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}

	placed, err := h.service.PlaceOrder(ctx, auth.ActorFrom(ctx), application.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  req.ShippingMethod,
		Phone:           req.Phone,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	span.SetAttributes(
		attribute.String("order.id", placed.OrderID.String()),
		attribute.String("order.number", placed.OrderNumber),
	)
	httpx.WriteJSON(w, http.StatusCreated, placed)
}

func (h *Handler) recentOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecentOrders")
	defer span.End()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, span, apperr.Validation("limit must be a number"))
			return
		}
		limit = n
	}
	as := application.Perspective(r.URL.Query().Get("as"))

	orders, err := h.service.RecentOrders(ctx, auth.ActorFrom(ctx), as, limit)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	cart, err := h.service.Cart(ctx, auth.ActorFrom(ctx))
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) setCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SetCartQuantity")
	defer span.End()

	var req setCartReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}
	if err := h.service.SetCartQuantity(ctx, auth.ActorFrom(ctx), req.ProductID, req.Quantity); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveFromCart")
	defer span.End()

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, span, apperr.Validation("invalid product id"))
		return
	}
	if err := h.service.RemoveFromCart(ctx, auth.ActorFrom(ctx), productID); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	if err := h.service.ClearCart(ctx, auth.ActorFrom(ctx)); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
