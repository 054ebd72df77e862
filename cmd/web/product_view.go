package main

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"brightcart.io/store-web/internal/format"
	"brightcart.io/store-web/internal/shop"
)

// ProductCard is the card view model shared by the featured grid and the
// product list.
type ProductCard struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Image       string
	InStock     bool
	StockLabel  string
	DetailURL   string
}

// HomeView backs the featured-products section of the landing page.
type HomeView struct {
	Featured []ProductCard
}

// ShopView backs the full product list with its availability filter.
type ShopView struct {
	Filter   string
	Products []ProductCard
}

// ProductDetailView backs the single-product page.
type ProductDetailView struct {
	ProductCard
	DescriptionHTML template.HTML
}

func buildProductCard(p shop.Product) ProductCard {
	label := "Out of Stock"
	if p.Available() {
		label = "In Stock"
	}
	return ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       format.Price(p.Price),
		Image:       p.Image,
		InStock:     p.Available(),
		StockLabel:  label,
		DetailURL:   fmt.Sprintf("/product?id=%d", p.ID),
	}
}

// buildHomeView keeps only the recommended subset, in catalog order.
func buildHomeView(products []shop.Product) HomeView {
	var view HomeView
	for _, p := range products {
		if p.Recommended {
			view.Featured = append(view.Featured, buildProductCard(p))
		}
	}
	return view
}

// buildShopView filters the full fetched list; the backend is never
// asked to filter. Order is preserved.
func buildShopView(products []shop.Product, filter string) ShopView {
	view := ShopView{Filter: normalizeFilter(filter)}
	for _, p := range products {
		switch view.Filter {
		case "available":
			if p.Availability != shop.AvailabilityAvailable {
				continue
			}
		case "outofstock":
			if p.Availability != shop.AvailabilityOutOfStock {
				continue
			}
		}
		view.Products = append(view.Products, buildProductCard(p))
	}
	return view
}

func normalizeFilter(filter string) string {
	switch filter {
	case "available", "outofstock":
		return filter
	default:
		return "all"
	}
}

var descriptionPolicy = bluemonday.UGCPolicy()

// buildProductDetailView renders the long description as sanitized
// markdown so catalog copy can carry emphasis and lists.
func buildProductDetailView(p shop.Product) ProductDetailView {
	view := ProductDetailView{ProductCard: buildProductCard(p)}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(p.Description), &buf); err != nil {
		view.DescriptionHTML = template.HTML(template.HTMLEscapeString(p.Description))
		return view
	}
	view.DescriptionHTML = template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes()))
	return view
}
