package main

import (
	"net/http"
	"strconv"
)

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	pd := newPageData(r, "BrightCart")
	pd.Home = buildHomeView(shopClient.ListProducts(r.Context()))
	renderPage(w, r, "home", pd)
}

func ProductsHandler(w http.ResponseWriter, r *http.Request) {
	pd := newPageData(r, "Products")
	products := shopClient.ListProducts(r.Context())
	pd.Shop = buildShopView(products, r.URL.Query().Get("filter"))
	renderPage(w, r, "products", pd)
}

func ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	pd := newPageData(r, "Product")
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		renderPageStatus(w, r, http.StatusNotFound, "product", pd)
		return
	}
	product, err := shopClient.GetProduct(r.Context(), id)
	if err != nil {
		pd.notice("error", "Failed to load product.")
		renderPageStatus(w, r, http.StatusNotFound, "product", pd)
		return
	}
	view := buildProductDetailView(product)
	pd.Title = view.Name
	pd.Product = &view
	renderPage(w, r, "product", pd)
}
