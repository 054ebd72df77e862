package main

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brightcart.io/store-web/internal/session"
	"brightcart.io/store-web/internal/shop"
)

const testToken = "tok-123"

// testBackend is a fake storefront API. Defaults cover the happy path;
// tests override the status/body fields to provoke failures.
type testBackend struct {
	mu sync.Mutex

	catalogJSON   string
	catalogStatus int
	productJSON   map[string]string
	cartJSON      string
	ordersJSON    string
	profileName   string
	profileEmail  string

	loginStatus    int
	loginJSON      string
	registerStatus int
	cartStatus     int
	cartBody       string
	mutateStatus   int
	mutateBody     string

	idemKeys []string
	cartHits atomic.Int64
}

func newTestBackend() *testBackend {
	return &testBackend{
		catalogJSON: `{"products":[
			{"id":1,"name":"Mug","description":"A mug.","price":9.99,"availability":"available","recommended":true},
			{"id":2,"name":"Poster","description":"A poster.","price":15,"availability":"outofstock","recommended":false},
			{"id":3,"name":"Shirt","description":"A shirt.","price":25.5,"availability":"available","recommended":false}
		]}`,
		productJSON: map[string]string{
			"1": `{"id":1,"name":"Mug","description":"A mug.","price":9.99,"availability":"available","recommended":true}`,
			"2": `{"id":2,"name":"Poster","description":"A poster.","price":15,"availability":"outofstock","recommended":false}`,
			"3": `{"id":3,"name":"Shirt","description":"A shirt.","price":25.5,"availability":"available","recommended":false}`,
		},
		cartJSON:       `{"cart":[{"productId":1,"quantity":2}]}`,
		ordersJSON:     `{"orders":[{"id":41,"status":"shipped","total":19.98,"date":"2026-08-01T12:00:00Z"}]}`,
		profileName:    "Ada",
		profileEmail:   "ada@example.com",
		loginStatus:    http.StatusOK,
		loginJSON:      `{"token":"` + testToken + `"}`,
		registerStatus: http.StatusCreated,
	}
}

func (b *testBackend) authed(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	if strings.HasPrefix(path, "/cart") {
		b.cartHits.Add(1)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && path == "/products":
		if b.catalogStatus != 0 {
			writeJSON(w, b.catalogStatus, `{"message":"catalog down"}`)
			return
		}
		writeJSON(w, http.StatusOK, b.catalogJSON)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/products/"):
		if body, ok := b.productJSON[strings.TrimPrefix(path, "/products/")]; ok {
			writeJSON(w, http.StatusOK, body)
			return
		}
		writeJSON(w, http.StatusNotFound, `{"message":"Product not found"}`)
	case r.Method == http.MethodPost && path == "/auth/login":
		writeJSON(w, b.loginStatus, b.loginJSON)
	case r.Method == http.MethodPost && path == "/auth/register":
		writeJSON(w, b.registerStatus, `{}`)
	case r.Method == http.MethodGet && path == "/cart":
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		if b.cartStatus != 0 {
			writeJSON(w, b.cartStatus, b.cartBody)
			return
		}
		writeJSON(w, http.StatusOK, b.cartJSON)
	case path == "/cart" && (r.Method == http.MethodPost || r.Method == http.MethodPut),
		r.Method == http.MethodDelete && strings.HasPrefix(path, "/cart/"):
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		if b.mutateStatus != 0 {
			writeJSON(w, b.mutateStatus, b.mutateBody)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	case r.Method == http.MethodGet && path == "/user/profile":
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		profile, _ := json.Marshal(map[string]string{"name": b.profileName, "email": b.profileEmail})
		writeJSON(w, http.StatusOK, string(profile))
	case r.Method == http.MethodPut && path == "/user/profile":
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	case r.Method == http.MethodPost && path == "/orders":
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		b.idemKeys = append(b.idemKeys, r.Header.Get("Idempotency-Key"))
		writeJSON(w, http.StatusCreated, `{}`)
	case r.Method == http.MethodGet && path == "/orders":
		if !b.authed(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
			return
		}
		writeJSON(w, http.StatusOK, b.ordersJSON)
	default:
		http.NotFound(w, r)
	}
}

// newApp wires the router against a fake backend. Package-level
// collaborators are swapped out, so these tests do not run in parallel.
func newApp(t *testing.T, backend *testBackend) *httptest.Server {
	t.Helper()
	logger = zap.NewNop()
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)
	shopClient = shop.NewClient(api.URL+"/api", logger)
	sessionStore = session.NewStore("0123456789abcdef0123456789abcdef", false)
	templatesDir = filepath.Join("..", "..", "templates")
	devMode = true
	srv := httptest.NewServer(newRouter())
	t.Cleanup(srv.Close)
	return srv
}

// browser drives the app the way a real one would: cookie jar, CSRF
// token from the session cookie, redirects followed explicitly.
type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) get(path string) (*http.Response, *goquery.Document) {
	b.t.Helper()
	resp, err := b.http.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(b.t, err)
	return resp, doc
}

func (b *browser) csrfToken() string {
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.http.Jar.Cookies(u) {
		if c.Name != "STORE_WEB_SESSION" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(strings.SplitN(c.Value, ".", 2)[0])
		require.NoError(b.t, err)
		var payload struct {
			CSRF string `json:"csrf"`
		}
		require.NoError(b.t, json.Unmarshal(raw, &payload))
		return payload.CSRF
	}
	return ""
}

func (b *browser) postForm(path string, vals url.Values) *http.Response {
	b.t.Helper()
	if vals == nil {
		vals = url.Values{}
	}
	if b.csrfToken() == "" {
		b.get("/login")
	}
	vals.Set("csrf_token", b.csrfToken())
	resp, err := b.http.PostForm(b.base+path, vals)
	require.NoError(b.t, err)
	_ = resp.Body.Close()
	return resp
}

func (b *browser) follow(resp *http.Response) (*http.Response, *goquery.Document) {
	b.t.Helper()
	loc := resp.Header.Get("Location")
	require.NotEmpty(b.t, loc, "expected a redirect")
	return b.get(loc)
}

func (b *browser) login() {
	b.t.Helper()
	resp := b.postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"pw"}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
}

func flashes(doc *goquery.Document) []string {
	var out []string
	doc.Find(".flash").Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func TestHealthz(t *testing.T) {
	srv := newApp(t, newTestBackend())
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestHomeShowsRecommendedProducts(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)

	resp, doc := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cards := doc.Find(".product-card")
	require.Equal(t, 1, cards.Length())
	assert.Contains(t, cards.Text(), "Mug")
	assert.Equal(t, "$9.99", cards.Find(".price").Text())

	_, disabled := cards.Find("button").Attr("disabled")
	assert.False(t, disabled)
}

func TestHomeWithNothingRecommended(t *testing.T) {
	backend := newTestBackend()
	backend.catalogJSON = `{"products":[{"id":2,"name":"Poster","price":15,"availability":"outofstock","recommended":false}]}`
	srv := newApp(t, backend)
	b := newBrowser(t, srv)

	resp, doc := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, doc.Find(".product-card").Length())
	assert.Contains(t, doc.Find("main").Text(), "No featured products")
}

func TestCatalogFailureRendersEmptyPages(t *testing.T) {
	backend := newTestBackend()
	backend.catalogStatus = http.StatusInternalServerError
	srv := newApp(t, backend)
	b := newBrowser(t, srv)

	resp, doc := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, doc.Find(".product-card").Length())
	assert.Contains(t, doc.Find("main").Text(), "No featured products")

	resp, doc = b.get("/products")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, doc.Find(".product-card").Length())
}

func TestProductsFilter(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)

	_, doc := b.get("/products?filter=available")
	names := doc.Find(".product-card h2")
	require.Equal(t, 2, names.Length())
	assert.Equal(t, "Mug", strings.TrimSpace(names.Eq(0).Text()))
	assert.Equal(t, "Shirt", strings.TrimSpace(names.Eq(1).Text()))

	_, doc = b.get("/products?filter=outofstock")
	cards := doc.Find(".product-card")
	require.Equal(t, 1, cards.Length())
	assert.Contains(t, cards.Text(), "Poster")
	_, disabled := cards.Find("button").Attr("disabled")
	assert.True(t, disabled)

	_, doc = b.get("/products?filter=bogus")
	assert.Equal(t, 3, doc.Find(".product-card").Length())
}

func TestProductDetail(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)

	resp, doc := b.get("/product?id=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mug", strings.TrimSpace(doc.Find("h1").Text()))
	assert.Equal(t, "$9.99", doc.Find(".price").Text())

	resp, doc = b.get("/product?id=99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, doc.Find("h1").Text(), "Product not found")

	resp, _ = b.get("/product?id=nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartRequiresLogin(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)

	resp, err := b.http.Get(srv.URL + "/cart")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, doc := b.get("/login")
	assert.Equal(t, []string{"Please login to view your cart."}, flashes(doc))

	// Flashes are one-shot.
	_, doc = b.get("/login")
	assert.Empty(t, flashes(doc))
}

func TestAnonymousCartAddNeverCallsBackend(t *testing.T) {
	backend := newTestBackend()
	srv := newApp(t, backend)
	b := newBrowser(t, srv)

	resp := b.postForm("/cart/add", url.Values{"product_id": {"1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, int64(0), backend.cartHits.Load())

	_, doc := b.follow(resp)
	assert.Equal(t, []string{"Please login to add items to cart."}, flashes(doc))
}

func TestLoginAndCartTotals(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)
	b.login()

	_, doc := b.get("/")
	assert.Equal(t, []string{"Login successful!"}, flashes(doc))
	navText := doc.Find("header nav").Text()
	assert.Contains(t, navText, "Orders")
	assert.NotContains(t, navText, "Login")
	assert.Equal(t, "2", doc.Find(".badge").Text())

	_, doc = b.get("/cart")
	rows := doc.Find("tbody tr")
	require.Equal(t, 1, rows.Length())
	assert.Contains(t, rows.Text(), "Mug")
	assert.Equal(t, "$19.98", rows.Find(".line-total").Text())
	assert.Equal(t, "19.98", doc.Find(".cart-total").Text())
}

func TestCartAddSuccess(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)
	b.login()
	b.get("/") // drain the login flash

	resp := b.postForm("/cart/add", url.Values{"product_id": {"3"}, "back": {"/products"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products", resp.Header.Get("Location"))

	_, doc := b.follow(resp)
	assert.Equal(t, []string{"Product added to cart!"}, flashes(doc))
}

func TestCartMutationFailureShowsOneAlert(t *testing.T) {
	backend := newTestBackend()
	backend.mutateStatus = http.StatusInternalServerError
	backend.mutateBody = `{"message":"Cart service unavailable."}`
	srv := newApp(t, backend)
	b := newBrowser(t, srv)
	b.login()
	b.get("/") // drain the login flash

	resp := b.postForm("/cart/add", url.Values{"product_id": {"1"}, "back": {"/products"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, doc := b.follow(resp)
	assert.Equal(t, []string{"Cart service unavailable."}, flashes(doc))

	_, doc = b.get("/products")
	assert.Empty(t, flashes(doc))
}

func TestLoginFailureKeepsFormState(t *testing.T) {
	backend := newTestBackend()
	backend.loginStatus = http.StatusUnauthorized
	backend.loginJSON = `{"message":"Invalid credentials"}`
	srv := newApp(t, backend)
	b := newBrowser(t, srv)

	resp, err := b.http.PostForm(srv.URL+"/login", url.Values{
		"csrf_token": {mustCSRF(b)},
		"email":      {"ada@example.com"},
		"password":   {"wrong"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Invalid credentials", strings.TrimSpace(doc.Find(".form-error").Text()))
	val, _ := doc.Find("input[name=email]").Attr("value")
	assert.Equal(t, "ada@example.com", val)
}

func mustCSRF(b *browser) string {
	if b.csrfToken() == "" {
		b.get("/login")
	}
	return b.csrfToken()
}

func TestRegisterFlow(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)

	resp := b.postForm("/register", url.Values{
		"name":     {"Ada"},
		"email":    {"ada@example.com"},
		"password": {"pw"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, doc := b.follow(resp)
	assert.Equal(t, []string{"Registration successful! Please login."}, flashes(doc))
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)
	b.login()

	_, doc := b.get("/profile")
	name, _ := doc.Find("input[name=name]").Attr("value")
	email, _ := doc.Find("input[name=email]").Attr("value")
	assert.Equal(t, "Ada", name)
	assert.Equal(t, "ada@example.com", email)

	resp := b.postForm("/profile", url.Values{"name": {"Ada L"}, "email": {"ada@example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	_, doc = b.follow(resp)
	assert.Equal(t, []string{"Profile updated successfully!"}, flashes(doc))
}

func TestCheckoutPlacesOrder(t *testing.T) {
	backend := newTestBackend()
	srv := newApp(t, backend)
	b := newBrowser(t, srv)
	b.login()

	resp, _ := b.get("/checkout")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post := b.postForm("/checkout", url.Values{
		"full_name":   {"Ada Lovelace"},
		"address":     {"1 Analytical Way"},
		"card_number": {"4111111111111111"},
		"expiry":      {"12/27"},
		"cvv":         {"123"},
	})
	require.Equal(t, http.StatusSeeOther, post.StatusCode)
	assert.Equal(t, "/orders", post.Header.Get("Location"))

	_, doc := b.follow(post)
	assert.Equal(t, []string{"Order placed successfully!"}, flashes(doc))
	assert.Contains(t, doc.Find("tbody").Text(), "shipped")
	assert.Contains(t, doc.Find("tbody").Text(), "$19.98")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.idemKeys, 1)
	assert.NotEmpty(t, backend.idemKeys[0])
}

func TestCheckoutValidation(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)
	b.login()

	resp, err := b.http.PostForm(srv.URL+"/checkout", url.Values{
		"csrf_token": {mustCSRF(b)},
		"full_name":  {"Ada Lovelace"},
		"address":    {"1 Analytical Way"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Please fill in all fields.", strings.TrimSpace(doc.Find(".form-error").Text()))
	val, _ := doc.Find("input[name=full_name]").Attr("value")
	assert.Equal(t, "Ada Lovelace", val)
}

func TestExpiredTokenClearsSession(t *testing.T) {
	backend := newTestBackend()
	srv := newApp(t, backend)
	b := newBrowser(t, srv)
	b.login()
	b.get("/") // drain the login flash

	backend.mu.Lock()
	backend.cartStatus = http.StatusUnauthorized
	backend.cartBody = `{"message":"token expired"}`
	backend.mu.Unlock()

	resp, err := b.http.Get(srv.URL + "/cart")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, doc := b.get("/login")
	assert.Equal(t, []string{"Your session has expired. Please login again."}, flashes(doc))

	backend.mu.Lock()
	backend.cartStatus = 0
	backend.mu.Unlock()

	_, doc = b.get("/")
	assert.Contains(t, doc.Find("header nav").Text(), "Login")
}

func TestPostWithoutCSRFTokenRejected(t *testing.T) {
	srv := newApp(t, newTestBackend())
	b := newBrowser(t, srv)
	b.get("/login") // establish a session

	resp, err := b.http.PostForm(srv.URL+"/cart/add", url.Values{"product_id": {"1"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
