// Package pricing computes an order's payable price from its line items and
// selected add-ons/charges. Pure computation: no I/O, no error path, empty
// input yields a zero price. Currency is integer minor units throughout.
package pricing

// OrderPrice is derived on every read and never stored.
type OrderPrice struct {
	TotalPrice    int64 `json:"total_price"`
	DiscountPrice int64 `json:"discount_price"`
}

// Line is one (product price, quantity) pairing.
type Line struct {
	Price    int64
	Quantity int
}

// Extra is an add-on or charge price with its applicability flag.
type Extra struct {
	Price      int64
	Applicable bool
}

// Compute returns the payable total and the discount amount.
//
// Total = sum(price*qty) + applicable add-ons + applicable charges.
// Non-applicable add-ons are excluded from the total and reported as
// DiscountPrice; non-applicable charges contribute nothing.
func Compute(lines []Line, addOns, charges []Extra) OrderPrice {
	var p OrderPrice
	for _, l := range lines {
		p.TotalPrice += l.Price * int64(l.Quantity)
	}
	for _, a := range addOns {
		if a.Applicable {
			p.TotalPrice += a.Price
		} else {
			p.DiscountPrice += a.Price
		}
	}
	for _, c := range charges {
		if c.Applicable {
			p.TotalPrice += c.Price
		}
	}
	return p
}
