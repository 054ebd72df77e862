package nav

import "strings"

// Item represents a top-level navigation item.
type Item struct {
	Path  string
	Label string
	// Authed restricts the item to signed-in visitors; Anon to anonymous.
	Authed bool
	Anon   bool
}

// RenderedItem is a view model for the layout template.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", Label: "Home"},
	{Path: "/products", Label: "Products"},
	{Path: "/cart", Label: "Cart"},
	{Path: "/orders", Label: "Orders", Authed: true},
	{Path: "/profile", Label: "Profile", Authed: true},
	{Path: "/login", Label: "Login", Anon: true},
	{Path: "/register", Label: "Register", Anon: true},
}

// Build renders navigation items with active state for the current path,
// filtered by whether the visitor is signed in.
func Build(currentPath string, authenticated bool) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		if it.Authed && !authenticated {
			continue
		}
		if it.Anon && authenticated {
			continue
		}
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}
