package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
)

type cartRow struct {
	productID uuid.UUID
	quantity  int
}

// memDB backs every fake repository so tests can inspect the combined state.
type memDB struct {
	buyers   map[uuid.UUID]bool
	products map[uuid.UUID]*domain.Product
	carts    map[uuid.UUID][]cartRow
	orders   map[uuid.UUID]*domain.Order
	numbers  map[string]bool
	items    map[uuid.UUID][]domain.OrderItem
	events   []outbox.Message

	buyerLookupErr error
	buyerCreateErr error
	cartListErr    error
	cartClearErr   error
	createErr      error
	itemsErr       error
	deleteErr      error
	decrementErr   error

	createCalls int
	deleted     []uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{
		buyers:   map[uuid.UUID]bool{},
		products: map[uuid.UUID]*domain.Product{},
		carts:    map[uuid.UUID][]cartRow{},
		orders:   map[uuid.UUID]*domain.Order{},
		numbers:  map[string]bool{},
		items:    map[uuid.UUID][]domain.OrderItem{},
	}
}

func (db *memDB) addProduct(name, price string, stock int) uuid.UUID {
	p := &domain.Product{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Status:        domain.ProductActive,
	}
	db.products[p.ID] = p
	return p.ID
}

func (db *memDB) addToCart(buyer, product uuid.UUID, qty int) {
	db.carts[buyer] = append(db.carts[buyer], cartRow{productID: product, quantity: qty})
}

type fakeBuyers struct{ db *memDB }

func (f fakeBuyers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	if f.db.buyerLookupErr != nil {
		return false, f.db.buyerLookupErr
	}
	return f.db.buyers[id], nil
}

func (f fakeBuyers) Create(_ context.Context, id uuid.UUID) error {
	if f.db.buyerCreateErr != nil {
		return f.db.buyerCreateErr
	}
	f.db.buyers[id] = true
	return nil
}

type fakeCarts struct{ db *memDB }

func (f fakeCarts) ListWithProducts(_ context.Context, buyer uuid.UUID) ([]domain.CartLine, error) {
	if f.db.cartListErr != nil {
		return nil, f.db.cartListErr
	}
	var lines []domain.CartLine
	for _, row := range f.db.carts[buyer] {
		lines = append(lines, domain.CartLine{
			BuyerID:   buyer,
			ProductID: row.productID,
			Quantity:  row.quantity,
			Product:   *f.db.products[row.productID],
		})
	}
	return lines, nil
}

func (f fakeCarts) Upsert(_ context.Context, buyer, product uuid.UUID, qty int) error {
	rows := f.db.carts[buyer]
	for i := range rows {
		if rows[i].productID == product {
			rows[i].quantity = qty
			return nil
		}
	}
	f.db.carts[buyer] = append(rows, cartRow{productID: product, quantity: qty})
	return nil
}

func (f fakeCarts) Remove(_ context.Context, buyer, product uuid.UUID) error {
	rows := f.db.carts[buyer][:0]
	for _, row := range f.db.carts[buyer] {
		if row.productID != product {
			rows = append(rows, row)
		}
	}
	f.db.carts[buyer] = rows
	return nil
}

func (f fakeCarts) Clear(_ context.Context, buyer uuid.UUID) error {
	if f.db.cartClearErr != nil {
		return f.db.cartClearErr
	}
	delete(f.db.carts, buyer)
	return nil
}

type fakeProducts struct{ db *memDB }

func (f fakeProducts) Get(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := f.db.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return *p, nil
}

func (f fakeProducts) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	if f.db.decrementErr != nil {
		return f.db.decrementErr
	}
	p := f.db.products[id]
	if p.StockQuantity < qty {
		return domain.ErrStockDepleted
	}
	p.StockQuantity -= qty
	return nil
}

type fakeOrders struct{ db *memDB }

func (f fakeOrders) Create(_ context.Context, o *domain.Order) error {
	f.db.createCalls++
	if f.db.createErr != nil {
		return f.db.createErr
	}
	if f.db.numbers[o.OrderNumber] {
		return domain.ErrOrderNumberConflict
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	stored := *o
	stored.Items = nil
	f.db.orders[o.ID] = &stored
	f.db.numbers[o.OrderNumber] = true
	return nil
}

func (f fakeOrders) CreateItems(_ context.Context, orderID uuid.UUID, items []domain.OrderItem, event outbox.Message) error {
	if f.db.itemsErr != nil {
		return f.db.itemsErr
	}
	f.db.items[orderID] = append([]domain.OrderItem(nil), items...)
	f.db.events = append(f.db.events, event)
	return nil
}

func (f fakeOrders) Delete(ctx context.Context, orderID uuid.UUID) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if f.db.deleteErr != nil {
		return f.db.deleteErr
	}
	f.db.deleted = append(f.db.deleted, orderID)
	if o, ok := f.db.orders[orderID]; ok {
		delete(f.db.numbers, o.OrderNumber)
	}
	delete(f.db.orders, orderID)
	delete(f.db.items, orderID)
	return nil
}

func (f fakeOrders) RecentForBuyer(_ context.Context, buyer uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	return f.summaries(func(o *domain.Order) bool { return o.BuyerID == buyer }, limit), nil
}

func (f fakeOrders) RecentForSeller(_ context.Context, owner uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	// Stores are keyed by product in the fake: the owner id is the store id.
	return f.summaries(func(o *domain.Order) bool {
		for _, it := range f.db.items[o.ID] {
			if f.db.products[it.ProductID].StoreID == owner {
				return true
			}
		}
		return false
	}, limit), nil
}

func (f fakeOrders) summaries(match func(*domain.Order) bool, limit int) []domain.OrderSummary {
	var out []domain.OrderSummary
	for _, o := range f.db.orders {
		if !match(o) {
			continue
		}
		count := 0
		for _, it := range f.db.items[o.ID] {
			count += it.Quantity
		}
		out = append(out, domain.OrderSummary{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			BuyerID:     o.BuyerID,
			Status:      o.Status,
			Total:       o.Total,
			ItemCount:   count,
			CreatedAt:   o.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
