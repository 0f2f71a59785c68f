package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

const (
	DefaultPaymentMethod  = "cash_on_delivery"
	DefaultShippingMethod = "standard"
)

type Order struct {
	ID              uuid.UUID       `json:"id"`
	BuyerID         uuid.UUID       `json:"buyerId"`
	OrderNumber     string          `json:"orderNumber"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingMethod  string          `json:"shippingMethod"`
	ShippingAddress string          `json:"shippingAddress"`
	ShippingPhone   string          `json:"shippingPhone,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem keeps the unit price paid at checkout. It is never recomputed
// from the product afterwards.
type OrderItem struct {
	OrderID         uuid.UUID       `json:"orderId"`
	ProductID       uuid.UUID       `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

type ShippingDetails struct {
	Address       string
	Method        string
	Phone         string
	PaymentMethod string
}

type Totals struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// CalculateTotals sums price*quantity over the lines. Shipping and tax are
// flat zero until carriers and tax rules are wired in.
func CalculateTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	shipping := decimal.Zero
	tax := decimal.Zero
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
	}
}

func NewOrder(buyerID uuid.UUID, details ShippingDetails, lines []CartLine) Order {
	totals := CalculateTotals(lines)
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.Product.Price,
		})
	}
	payment := details.PaymentMethod
	if payment == "" {
		payment = DefaultPaymentMethod
	}
	shipping := details.Method
	if shipping == "" {
		shipping = DefaultShippingMethod
	}
	return Order{
		BuyerID:         buyerID,
		Status:          StatusPending,
		PaymentMethod:   payment,
		ShippingMethod:  shipping,
		ShippingAddress: details.Address,
		ShippingPhone:   details.Phone,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Items:           items,
	}
}

// OrderSummary is the row shape returned by the recent-order functions. In
// the seller view Total and ItemCount cover only that seller's items.
type OrderSummary struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}
