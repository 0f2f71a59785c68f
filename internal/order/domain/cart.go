package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is unique per (buyer, product).
type CartLine struct {
	BuyerID   uuid.UUID `json:"buyerId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   Product   `json:"product"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ValidateLines checks every line against the product snapshot it was read
// with and returns the first violation.
func ValidateLines(lines []CartLine) error {
	for _, line := range lines {
		if !line.Product.Available() {
			return &ProductUnavailableError{ProductID: line.ProductID, Name: line.Product.Name}
		}
		if line.Product.StockQuantity < line.Quantity {
			return &InsufficientStockError{
				ProductID: line.ProductID,
				Name:      line.Product.Name,
				Requested: line.Quantity,
				Available: line.Product.StockQuantity,
			}
		}
	}
	return nil
}

type Cart struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	return Cart{Lines: lines, Subtotal: CalculateTotals(lines).Subtotal}
}
