package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/artisan-marketplace/internal/auth"
	"github.com/dmehra2102/artisan-marketplace/internal/notification/domain"
	"github.com/dmehra2102/artisan-marketplace/internal/platform/httpx"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

type Service interface {
	List(ctx context.Context, actor uuid.UUID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor, id uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("notification-http")}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Post("/notifications/{id}/read", h.markRead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListNotifications")
	defer span.End()

	unread := r.URL.Query().Get("unread") == "true"
	ns, err := h.service.List(ctx, auth.ActorFrom(ctx), unread)
	if err != nil {
		span.RecordError(err)
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"notifications": ns})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MarkNotificationRead")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.log, apperr.Validation("invalid notification id"))
		return
	}
	if err := h.service.MarkRead(ctx, auth.ActorFrom(ctx), id); err != nil {
		span.RecordError(err)
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
