package main

import (
	"brightcart.io/store-web/internal/format"
	"brightcart.io/store-web/internal/shop"
)

// CartItem pairs a cart line with its resolved product.
type CartItem struct {
	Product  shop.Product
	Quantity int
}

// CartRow is one rendered line of the cart table.
type CartRow struct {
	ProductID int64
	Name      string
	UnitPrice string
	Quantity  int
	LineTotal string
}

// CartView aggregates the cart page: rows, empty state, and the grand
// total formatted to two decimals ("0.00" when empty).
type CartView struct {
	Rows  []CartRow
	Empty bool
	Total string
}

func buildCartView(items []CartItem) CartView {
	view := CartView{Empty: len(items) == 0}
	var total float64
	for _, it := range items {
		line := it.Product.Price * float64(it.Quantity)
		total += line
		view.Rows = append(view.Rows, CartRow{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: format.Price(it.Product.Price),
			Quantity:  it.Quantity,
			LineTotal: format.Price(line),
		})
	}
	view.Total = format.Amount(total)
	return view
}
