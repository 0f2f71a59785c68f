package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductDraft    ProductStatus = "draft"
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductPending  ProductStatus = "pending"
)

// Product is the checkout view of a listing: only what pricing and stock
// validation need.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	StoreID       uuid.UUID       `json:"storeId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Status        ProductStatus   `json:"status"`
}

func (p Product) Available() bool {
	return p.Status == ProductActive
}
