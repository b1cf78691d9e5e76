package catalog

import "time"

// Product is immutable reference data from the cart's point of view.
// Price is in integer minor currency units.
type Product struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddOnItem is an optional extra for an order. When IsApplicable is false the
// price is tracked informationally only and surfaces as a discount instead of
// being charged.
type AddOnItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	IsApplicable bool   `json:"is_applicable"`
}

// Charge is an order-level fee (delivery, packaging, ...). Non-applicable
// charges never enter the total.
type Charge struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	IsApplicable bool   `json:"is_applicable"`
}
