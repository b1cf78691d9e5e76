package cart

import (
	"time"

	"github.com/skniyajali/PoposRoom-sub013/internal/catalog"
	"github.com/skniyajali/PoposRoom-sub013/internal/pricing"
)

type OrderType string

const (
	DineIn  OrderType = "DineIn"
	DineOut OrderType = "DineOut"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusPlaced     OrderStatus = "Placed"
)

// Order is the order-level record owning a set of line items. Status only
// ever moves Processing -> Placed.
type Order struct {
	ID         int64       `json:"id"`
	Type       OrderType   `json:"order_type"`
	Status     OrderStatus `json:"order_status"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	AddressID  *int64      `json:"address_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

// LineItem is one (product, quantity) row of an order. Quantity is always
// positive; a row at quantity zero does not exist.
type LineItem struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Item is a line item with its product resolved from the catalog.
type Item struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
}

// CartItem is the full aggregate handed to callers: order, resolved items,
// selected add-ons/charges and the price computed at read time. It is
// assembled on every read and never persisted.
type CartItem struct {
	Order   Order               `json:"order"`
	Items   []Item              `json:"items"`
	AddOns  []catalog.AddOnItem `json:"add_ons,omitempty"`
	Charges []catalog.Charge    `json:"charges,omitempty"`
	Price   pricing.OrderPrice  `json:"price"`
}
