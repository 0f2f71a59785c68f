package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateOrder   = "order"
	EventOrderPlaced = "OrderPlaced"
)

type OrderPlaced struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderItem     `json:"items"`
}

func NewOrderPlaced(o Order) OrderPlaced {
	return OrderPlaced{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		BuyerID:     o.BuyerID,
		Total:       o.Total,
		Items:       o.Items,
	}
}
