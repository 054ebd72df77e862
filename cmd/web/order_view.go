package main

import (
	"brightcart.io/store-web/internal/format"
	"brightcart.io/store-web/internal/shop"
)

// OrderRow is one entry in the order history.
type OrderRow struct {
	ID     int64
	Status string
	Total  string
	Date   string
}

// OrdersView backs the order history page.
type OrdersView struct {
	Orders []OrderRow
	Empty  bool
}

// CheckoutView backs the checkout form, echoing entered values back when
// the submission is rejected.
type CheckoutView struct {
	Error string
	Form  shop.CheckoutForm
}

func buildOrdersView(orders []shop.Order) OrdersView {
	view := OrdersView{Empty: len(orders) == 0}
	for _, o := range orders {
		view.Orders = append(view.Orders, OrderRow{
			ID:     o.ID,
			Status: o.Status,
			Total:  format.Price(o.Total),
			Date:   format.Date(o.PlacedAt),
		})
	}
	return view
}
