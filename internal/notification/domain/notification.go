package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

const TypeNewOrder = "new_order"

var ErrNotFound = apperr.New(apperr.KindNotFound, "notification not found")

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	OrderID   *uuid.UUID `json:"orderId,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SellerSale is what one seller sold in one order.
type SellerSale struct {
	SellerID uuid.UUID
	Units    int
	Amount   decimal.Decimal
}

func NewOrderNotification(orderID uuid.UUID, orderNumber string, sale SellerSale) Notification {
	return Notification{
		UserID:  sale.SellerID,
		Type:    TypeNewOrder,
		Title:   "New order " + orderNumber,
		Body:    fmt.Sprintf("%d item(s) sold for %s", sale.Units, sale.Amount.StringFixed(2)),
		OrderID: &orderID,
	}
}
