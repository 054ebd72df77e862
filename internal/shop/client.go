package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// Client issues calls against the storefront backend API. Every method
// performs exactly one round trip. Methods that act on the caller's cart,
// profile, or orders take the session's bearer token explicitly; an empty
// token never reaches the network.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient constructs an API client rooted at baseURL (e.g.
// "https://api.example.com/api"). A nil logger is replaced with a no-op.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger,
	}
}

// ListProducts fetches the full catalog. Failures are logged and collapse
// to an empty list so catalog pages degrade to an empty render instead of
// an error page.
func (c *Client) ListProducts(ctx context.Context) []Product {
	var payload struct {
		Products []productPayload `json:"products"`
	}
	if err := c.call(ctx, http.MethodGet, "", nil, &payload, "products"); err != nil {
		c.log.Warn("list products failed", zap.Error(err))
		return nil
	}
	out := make([]Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		out = append(out, p.toProduct())
	}
	return out
}

// GetProduct fetches one product by id. Returns ErrNotFound when the
// backend has no such product.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var payload productPayload
	if err := c.call(ctx, http.MethodGet, "", nil, &payload, "products", strconv.FormatInt(id, 10)); err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

// ListCart returns the cart lines for the session. An empty token yields
// an empty cart without touching the network.
func (c *Client) ListCart(ctx context.Context, token string) ([]CartLine, error) {
	if token == "" {
		return nil, nil
	}
	var payload struct {
		Cart []cartLinePayload `json:"cart"`
	}
	if err := c.call(ctx, http.MethodGet, token, nil, &payload, "cart"); err != nil {
		return nil, err
	}
	out := make([]CartLine, 0, len(payload.Cart))
	for _, l := range payload.Cart {
		out = append(out, CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out, nil
}

// AddToCart adds one unit of the product to the session's cart.
func (c *Client) AddToCart(ctx context.Context, token string, productID int64) error {
	body := map[string]any{"productId": productID, "quantity": 1}
	return c.call(ctx, http.MethodPost, token, body, nil, "cart")
}

// ChangeQuantity applies a signed quantity delta to a cart line. The
// backend decides what happens when the result reaches zero or below.
func (c *Client) ChangeQuantity(ctx context.Context, token string, productID int64, delta int) error {
	body := map[string]any{"productId": productID, "delta": delta}
	return c.call(ctx, http.MethodPut, token, body, nil, "cart")
}

// RemoveFromCart deletes the cart line for the product.
func (c *Client) RemoveFromCart(ctx context.Context, token string, productID int64) error {
	return c.call(ctx, http.MethodDelete, token, nil, nil, "cart", strconv.FormatInt(productID, 10))
}

// Login exchanges credentials for a bearer token. Backend rejections come
// back as *StatusError carrying the server's message.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.call(ctx, http.MethodPost, "", body, &payload, "auth", "login"); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Token) == "" {
		return "", fmt.Errorf("shop: login response missing token")
	}
	return payload.Token, nil
}

// Register creates an account. No token is issued; the user logs in next.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.call(ctx, http.MethodPost, "", body, nil, "auth", "register")
}

// Profile fetches the account's editable fields.
func (c *Client) Profile(ctx context.Context, token string) (UserProfile, error) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.call(ctx, http.MethodGet, token, nil, &payload, "user", "profile"); err != nil {
		return UserProfile{}, err
	}
	return UserProfile{Name: strings.TrimSpace(payload.Name), Email: strings.TrimSpace(payload.Email)}, nil
}

// UpdateProfile saves the account's name and email.
func (c *Client) UpdateProfile(ctx context.Context, token, name, email string) error {
	body := map[string]string{"name": name, "email": email}
	return c.call(ctx, http.MethodPut, token, body, nil, "user", "profile")
}

// PlaceOrder submits the checkout form. An idempotency key guards against
// a double-submitted form placing two orders.
func (c *Client) PlaceOrder(ctx context.Context, token string, form CheckoutForm) error {
	body := map[string]string{
		"fullName":   form.FullName,
		"address":    form.Address,
		"cardNumber": form.CardNumber,
		"expiry":     form.Expiry,
		"cvv":        form.CVV,
	}
	return c.callWithHeaders(ctx, http.MethodPost, token, body, nil,
		http.Header{idempotencyHeader: []string{uuid.NewString()}}, "orders")
}

// ListOrders fetches the session's order history.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var payload struct {
		Orders []orderPayload `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, token, nil, &payload, "orders"); err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		out = append(out, o.toOrder())
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method, token string, body, out any, parts ...string) error {
	return c.callWithHeaders(ctx, method, token, body, out, nil, parts...)
}

func (c *Client) callWithHeaders(ctx context.Context, method, token string, body, out any, extra http.Header, parts ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, parts...)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return failure(resp, token != "")
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// failure maps a non-2xx response to an error kind. 401/403 on an
// authenticated call means the stored token is no good; on anonymous
// calls (login) the backend message is kept so it can be shown as-is.
func failure(resp *http.Response, authed bool) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return ErrUnauthorized
	}
	return &StatusError{Code: resp.StatusCode, Message: drainMessage(resp.Body)}
}

// drainMessage pulls a {"message": ...} body when present, otherwise a
// short plain-text slice of the response.
func drainMessage(r io.Reader) string {
	if r == nil {
		return ""
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

type productPayload struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Availability string  `json:"availability"`
	Recommended  bool    `json:"recommended"`
}

func (p productPayload) toProduct() Product {
	return Product{
		ID:           p.ID,
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Price:        p.Price,
		Image:        strings.TrimSpace(p.Image),
		Availability: strings.ToLower(strings.TrimSpace(p.Availability)),
		Recommended:  p.Recommended,
	}
}

type cartLinePayload struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderPayload struct {
	ID     int64   `json:"id"`
	Status string  `json:"status"`
	Total  float64 `json:"total"`
	Date   string  `json:"date"`
}

func (o orderPayload) toOrder() Order {
	return Order{
		ID:       o.ID,
		Status:   strings.TrimSpace(o.Status),
		Total:    o.Total,
		PlacedAt: parseTime(o.Date),
	}
}

func parseTime(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
