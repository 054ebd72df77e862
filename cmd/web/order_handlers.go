package main

import (
	"net/http"

	"brightcart.io/store-web/internal/shop"
)

func OrdersHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your orders.")
	if !ok {
		return
	}
	orders, err := shopClient.ListOrders(r.Context(), token)
	if err != nil {
		apiFailure(w, r, err, "Failed to load orders.", "/")
		return
	}
	pd := newPageData(r, "Your Orders")
	pd.Orders = buildOrdersView(orders)
	renderPage(w, r, "orders", pd)
}

func CheckoutPageHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to checkout.")
	if !ok {
		return
	}
	lines, err := shopClient.ListCart(r.Context(), token)
	if err != nil {
		apiFailure(w, r, err, "Failed to load cart.", "/cart")
		return
	}
	if len(lines) == 0 {
		flashRedirect(w, r, "error", "Your cart is empty.", "/cart")
		return
	}
	pd := newPageData(r, "Checkout")
	pd.Checkout = CheckoutView{}
	renderPage(w, r, "checkout", pd)
}

func CheckoutSubmitHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to checkout.")
	if !ok {
		return
	}
	form := shop.CheckoutForm{
		FullName:   formValue(r, "full_name"),
		Address:    formValue(r, "address"),
		CardNumber: formValue(r, "card_number"),
		Expiry:     formValue(r, "expiry"),
		CVV:        formValue(r, "cvv"),
	}

	renderError := func(msg string) {
		pd := newPageData(r, "Checkout")
		pd.Checkout = CheckoutView{Error: msg, Form: form}
		renderPageStatus(w, r, http.StatusUnprocessableEntity, "checkout", pd)
	}

	if form.FullName == "" || form.Address == "" || form.CardNumber == "" || form.Expiry == "" || form.CVV == "" {
		renderError("Please fill in all fields.")
		return
	}

	if err := shopClient.PlaceOrder(r.Context(), token, form); err != nil {
		if isUnauthorized(err) {
			apiFailure(w, r, err, "Failed to place order.", "/checkout")
			return
		}
		renderError(shop.UserMessage(err, "Failed to place order."))
		return
	}

	flashRedirect(w, r, "success", "Order placed successfully!", "/orders")
}
