package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/artisan-marketplace/internal/auth"
	"github.com/dmehra2102/artisan-marketplace/internal/promotion/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) PromoteProduct(ctx context.Context, actor, productID uuid.UUID, days int) (domain.Result, error) {
	args := m.Called(ctx, actor, productID, days)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockService) Unpromote(ctx context.Context, actor, productID uuid.UUID) error {
	return m.Called(ctx, actor, productID).Error(0)
}

func (m *mockService) Balance(ctx context.Context, actor uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func do(h http.Handler, method, target, body string, actor uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPromoteRoutes(t *testing.T) {
	svc := new(mockService)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).Routes()
	actor, product := uuid.New(), uuid.New()
	until := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)

	svc.On("PromoteProduct", mock.Anything, actor, product, 7).
		Return(domain.Result{NewBalance: decimal.NewFromInt(30), PromotedUntil: until}, nil).Once()
	rec := do(h, http.MethodPost, "/products/"+product.String()+"/promote", `{"days":7}`, actor)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"newBalance":"30","promotedUntil":"2026-03-16T10:00:00Z"}`, rec.Body.String())

	svc.On("PromoteProduct", mock.Anything, actor, product, 15).
		Return(domain.Result{}, &domain.InsufficientCreditsError{Required: decimal.NewFromInt(150), Available: decimal.NewFromInt(100)}).Once()
	rec = do(h, http.MethodPost, "/products/"+product.String()+"/promote", `{"days":15}`, actor)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"insufficient credits: 150.00 required, 100.00 available","required":"150.00","available":"100.00"}`, rec.Body.String())

	svc.On("PromoteProduct", mock.Anything, actor, product, 3).
		Return(domain.Result{}, &domain.PromotionApplyError{ProductID: product, Err: errors.New("locked")}).Once()
	rec = do(h, http.MethodPost, "/products/"+product.String()+"/promote", `{"days":3}`, actor)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "locked")

	svc.On("Unpromote", mock.Anything, actor, product).Return(apperr.ErrForbidden).Once()
	rec = do(h, http.MethodDelete, "/products/"+product.String()+"/promote", "", actor)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/products/nope/promote", `{"days":3}`, actor)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("Balance", mock.Anything, actor).Return(decimal.RequireFromString("12.5"), nil).Once()
	rec = do(h, http.MethodGet, "/credits/balance", "", actor)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"balance":"12.5"}`, rec.Body.String())

	svc.AssertExpectations(t)
}
