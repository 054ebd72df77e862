package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"brightcart.io/store-web/internal/nav"
	"brightcart.io/store-web/internal/session"
	"brightcart.io/store-web/internal/shop"
)

// PageData is the shared view model for the page layout plus one
// per-page payload.
type PageData struct {
	Title         string
	Path          string
	Nav           []nav.RenderedItem
	CartCount     int
	Authenticated bool
	Flashes       []session.Flash
	CSRFToken     string

	// Per-page view model payloads
	Home     any
	Shop     any
	Product  any
	Cart     any
	Orders   any
	Profile  any
	Auth     any
	Checkout any
}

// newPageData assembles the layout fields every page shares. The cart
// count badge refreshes on every page, like the original header counter.
func newPageData(r *http.Request, title string) PageData {
	sd := session.FromRequest(r)
	pd := PageData{
		Title:         title,
		Path:          r.URL.Path,
		Authenticated: sd.Authenticated(),
		Flashes:       sd.TakeFlashes(),
		CSRFToken:     sd.CSRFToken,
	}
	pd.Nav = nav.Build(r.URL.Path, pd.Authenticated)
	pd.CartCount = cartCount(r.Context(), sd.Token)
	return pd
}

// cartCount sums quantities across the session's cart lines. Failures
// read as zero; the badge is not worth an error page.
func cartCount(ctx context.Context, token string) int {
	lines, err := shopClient.ListCart(ctx, token)
	if err != nil {
		return 0
	}
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// notice appends an alert to an already-built page, for GET handlers
// that hit an API failure after the session flashes were drained.
func (pd *PageData) notice(tone, text string) {
	pd.Flashes = append(pd.Flashes, session.Flash{Tone: tone, Text: text})
}

func flashRedirect(w http.ResponseWriter, r *http.Request, tone, text, target string) {
	session.FromRequest(r).AddFlash(tone, text)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// requireToken enforces the local missing-session check: no network
// call happens, the user is sent to login with one alert.
func requireToken(w http.ResponseWriter, r *http.Request, msg string) (string, bool) {
	sd := session.FromRequest(r)
	if !sd.Authenticated() {
		flashRedirect(w, r, "error", msg, "/login")
		return "", false
	}
	return sd.Token, true
}

// apiFailure translates a data-access error from an authenticated call
// into the matching navigation. A 401 means the stored token went stale:
// the session is cleared and the user re-authenticates.
func apiFailure(w http.ResponseWriter, r *http.Request, err error, fallback, target string) {
	if errors.Is(err, shop.ErrUnauthorized) {
		session.FromRequest(r).Clear()
		flashRedirect(w, r, "error", "Your session has expired. Please login again.", "/login")
		return
	}
	flashRedirect(w, r, "error", shop.UserMessage(err, fallback), target)
}

func isUnauthorized(err error) bool {
	return errors.Is(err, shop.ErrUnauthorized)
}

// localPath keeps redirect targets on this site.
func localPath(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	return raw
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
