package domain

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

func line(price int64, qty, stock int, status ProductStatus) CartLine {
	id := uuid.New()
	return CartLine{
		ProductID: id,
		Quantity:  qty,
		Product: Product{
			ID:            id,
			Name:          "Hand-thrown mug",
			Price:         decimal.NewFromInt(price),
			StockQuantity: stock,
			Status:        status,
		},
	}
}

func TestCalculateTotals(t *testing.T) {
	lines := []CartLine{
		line(100, 2, 10, ProductActive),
		line(50, 1, 10, ProductActive),
	}
	totals := CalculateTotals(lines)

	require.True(t, totals.Subtotal.Equal(decimal.NewFromInt(250)))
	require.True(t, totals.ShippingCost.IsZero())
	require.True(t, totals.Tax.IsZero())
	require.True(t, totals.Total.Equal(decimal.NewFromInt(250)))
}

func TestCalculateTotalsKeepsCents(t *testing.T) {
	l := line(0, 3, 10, ProductActive)
	l.Product.Price = decimal.RequireFromString("19.99")

	totals := CalculateTotals([]CartLine{l})
	require.Equal(t, "59.97", totals.Total.StringFixed(2))
}

func TestValidateLines(t *testing.T) {
	ok := line(10, 1, 5, ProductActive)
	require.NoError(t, ValidateLines([]CartLine{ok}))

	draft := line(10, 1, 5, ProductDraft)
	err := ValidateLines([]CartLine{ok, draft})
	var unavailable *ProductUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, draft.ProductID, unavailable.ProductID)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))

	short := line(10, 6, 5, ProductActive)
	err = ValidateLines([]CartLine{short})
	var stock *InsufficientStockError
	require.True(t, errors.As(err, &stock))
	require.Equal(t, 6, stock.Requested)
	require.Equal(t, 5, stock.Available)
}

func TestNewOrderSnapshotsPrices(t *testing.T) {
	buyer := uuid.New()
	l := line(100, 2, 10, ProductActive)
	o := NewOrder(buyer, ShippingDetails{Address: "12 Kiln Lane"}, []CartLine{l})

	l.Product.Price = decimal.NewFromInt(999)

	require.Len(t, o.Items, 1)
	require.True(t, o.Items[0].PriceAtPurchase.Equal(decimal.NewFromInt(100)))
	require.True(t, o.Total.Equal(decimal.NewFromInt(200)))
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, DefaultPaymentMethod, o.PaymentMethod)
	require.Equal(t, DefaultShippingMethod, o.ShippingMethod)
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-260309-[0-9A-HJKMNP-TV-Z]{8}$`)

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n := NewOrderNumber(now)
		require.Regexp(t, pattern, n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, 1000)
}

func TestOrderItemCreationErrorUnwraps(t *testing.T) {
	cause := errors.New("batch insert failed")
	err := &OrderItemCreationError{OrderID: uuid.New(), Err: cause}

	require.ErrorIs(t, err, cause)
	require.Equal(t, "we could not save your order items, please try again", apperr.PublicMessage(err))
}
