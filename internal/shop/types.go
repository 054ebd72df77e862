package shop

import "time"

// Availability values the backend is known to emit. Anything else is
// treated as out of stock by callers.
const (
	AvailabilityAvailable  = "available"
	AvailabilityOutOfStock = "outofstock"
)

// Product is a catalog entry as served by the backend.
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        float64
	Image        string
	Availability string
	Recommended  bool
}

// Available reports whether the product can currently be purchased.
func (p Product) Available() bool {
	return p.Availability == AvailabilityAvailable
}

// CartLine is one product/quantity pairing inside the cart. Quantity is
// at least 1 once a line exists; the backend removes lines, it never
// keeps them at zero.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// Order summarizes a placed order. Status is a free-form backend string.
type Order struct {
	ID       int64
	Status   string
	Total    float64
	PlacedAt time.Time
}

// UserProfile holds the editable account fields.
type UserProfile struct {
	Name  string
	Email string
}

// CheckoutForm carries the checkout submission verbatim to the backend.
// The payment fields are part of the fixed API contract; this layer does
// not tokenize them.
type CheckoutForm struct {
	FullName   string
	Address    string
	CardNumber string
	Expiry     string
	CVV        string
}
