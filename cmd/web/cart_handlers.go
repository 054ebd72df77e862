package main

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

func CartHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your cart.")
	if !ok {
		return
	}
	pd := newPageData(r, "Your Cart")
	lines, err := shopClient.ListCart(r.Context(), token)
	if err != nil {
		apiFailure(w, r, err, "Failed to load cart.", "/")
		return
	}
	// Resolve each line's product; a line whose product cannot be
	// fetched is dropped from the render rather than failing the page.
	var items []CartItem
	for _, line := range lines {
		product, err := shopClient.GetProduct(r.Context(), line.ProductID)
		if err != nil {
			logger.Warn("cart line product lookup failed",
				zap.Int64("product_id", line.ProductID), zap.Error(err))
			continue
		}
		items = append(items, CartItem{Product: product, Quantity: line.Quantity})
	}
	pd.Cart = buildCartView(items)
	renderPage(w, r, "cart", pd)
}

func CartAddHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to add items to cart.")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(formValue(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		flashRedirect(w, r, "error", "Failed to add product to cart.", "/products")
		return
	}
	back := localPath(formValue(r, "back"), "/products")
	if err := shopClient.AddToCart(r.Context(), token, id); err != nil {
		apiFailure(w, r, err, "Failed to add product to cart.", back)
		return
	}
	flashRedirect(w, r, "success", "Product added to cart!", back)
}

func CartUpdateHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your cart.")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(formValue(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		flashRedirect(w, r, "error", "Failed to update cart.", "/cart")
		return
	}
	delta, err := strconv.Atoi(formValue(r, "delta"))
	if err != nil || delta == 0 {
		flashRedirect(w, r, "error", "Failed to update cart.", "/cart")
		return
	}
	if err := shopClient.ChangeQuantity(r.Context(), token, id, delta); err != nil {
		apiFailure(w, r, err, "Failed to update cart.", "/cart")
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your cart.")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(formValue(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		flashRedirect(w, r, "error", "Failed to remove item.", "/cart")
		return
	}
	if err := shopClient.RemoveFromCart(r.Context(), token, id); err != nil {
		apiFailure(w, r, err, "Failed to remove item.", "/cart")
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
