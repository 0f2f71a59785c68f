package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/artisan-marketplace/internal/auth"
	"github.com/dmehra2102/artisan-marketplace/internal/platform/httpx"
	"github.com/dmehra2102/artisan-marketplace/internal/promotion/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

type Service interface {
	PromoteProduct(ctx context.Context, actor, productID uuid.UUID, days int) (domain.Result, error)
	Unpromote(ctx context.Context, actor, productID uuid.UUID) error
	Balance(ctx context.Context, actor uuid.UUID) (decimal.Decimal, error)
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
		tracer:  otel.Tracer("promotion-http"),
	}
}

type promoteReq struct {
	Days int `json:"days"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/products/{productID}/promote", h.promote)
	r.Delete("/products/{productID}/promote", h.unpromote)
	r.Get("/credits/balance", h.balance)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	httpx.WriteError(w, r, h.log, err)
}

func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PromoteProduct")
	defer span.End()

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, span, apperr.Validation("invalid product id"))
		return
	}
	var req promoteReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", productID.String()), attribute.Int("promotion.days", req.Days))

	res, err := h.service.PromoteProduct(ctx, auth.ActorFrom(ctx), productID, req.Days)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) unpromote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Unpromote")
	defer span.End()

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, span, apperr.Validation("invalid product id"))
		return
	}
	if err := h.service.Unpromote(ctx, auth.ActorFrom(ctx), productID); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreditBalance")
	defer span.End()

	bal, err := h.service.Balance(ctx, auth.ActorFrom(ctx))
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": bal})
}
