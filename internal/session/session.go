// Package session keeps the backend-issued bearer token and one-shot
// flash messages in an HMAC-signed cookie, so authentication survives
// page loads and tabs without any server-side state.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const cookieName = "STORE_WEB_SESSION"

type ctxKey struct{}

// Flash is a one-shot notice rendered at the top of the next page.
type Flash struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// Data is the per-visitor session payload. An empty Token means the
// visitor is anonymous.
type Data struct {
	Token     string    `json:"tok,omitempty"`
	Flashes   []Flash   `json:"flash,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	dirty bool
}

// Authenticated reports whether a bearer token is present. Presence is
// the only signal; expiry is the backend's call.
func (d *Data) Authenticated() bool { return d.Token != "" }

// SetToken stores the bearer token issued at login.
func (d *Data) SetToken(token string) {
	d.Token = strings.TrimSpace(token)
	d.markDirty()
}

// Clear drops the token, returning the session to anonymous. Flashes and
// the CSRF token survive so the logout confirmation can still render.
func (d *Data) Clear() {
	d.Token = ""
	d.markDirty()
}

// AddFlash queues a notice for the next rendered page.
func (d *Data) AddFlash(tone, text string) {
	d.Flashes = append(d.Flashes, Flash{Tone: tone, Text: text})
	d.markDirty()
}

// TakeFlashes returns queued notices and empties the queue.
func (d *Data) TakeFlashes() []Flash {
	if len(d.Flashes) == 0 {
		return nil
	}
	out := d.Flashes
	d.Flashes = nil
	d.markDirty()
	return out
}

func (d *Data) markDirty() {
	d.dirty = true
	d.UpdatedAt = time.Now().UTC()
}

// Store signs and verifies session cookies.
type Store struct {
	signKey []byte
	secure  bool
}

// NewStore builds a cookie store with the given signing key. Secure
// marks cookies HTTPS-only, which production configs should set.
func NewStore(signKey string, secure bool) *Store {
	return &Store{signKey: []byte(signKey), secure: secure}
}

// Middleware loads or initializes the session and stores it in the
// request context. The cookie is (re)written just before the first body
// write when the session changed during the request.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.CSRFToken == "" {
			sd.CSRFToken = newCSRFToken()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sd)
		cw := &cookieWriter{ResponseWriter: w, write: func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, sd)
			}
		}}
		next.ServeHTTP(cw, r.WithContext(ctx))
		if !cw.wrote && (sd.dirty || !fromCookie) {
			s.write(w, sd)
		}
	})
}

// CSRF rejects unsafe-method requests whose form field or header does
// not carry the session's token. Templates embed the token as a hidden
// csrf_token input.
func (s *Store) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}
		sd := FromRequest(r)
		sent := r.Header.Get("X-CSRF-Token")
		if sent == "" {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			sent = r.PostFormValue("csrf_token")
		}
		if sd.CSRFToken == "" || sent != sd.CSRFToken {
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromRequest returns the request's session data. Outside the middleware
// it returns an empty anonymous session.
func FromRequest(r *http.Request) *Data {
	if v := r.Context().Value(ctxKey{}); v != nil {
		if sd, ok := v.(*Data); ok {
			return sd
		}
	}
	return &Data{}
}

func (s *Store) read(r *http.Request) (*Data, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return &Data{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &Data{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &Data{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &Data{}, false
	}
	mac := hmac.New(sha256.New, s.signKey)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return &Data{}, false
	}
	var sd Data
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &Data{}, false
	}
	return &sd, true
}

func (s *Store) write(w http.ResponseWriter, sd *Data) {
	b, _ := json.Marshal(sd)
	mac := hmac.New(sha256.New, s.signKey)
	mac.Write(b)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

// cookieWriter defers the Set-Cookie header until the handler commits to
// a response, so late session mutations still make it onto the wire.
type cookieWriter struct {
	http.ResponseWriter
	write func(http.ResponseWriter)
	wrote bool
}

func (cw *cookieWriter) WriteHeader(code int) {
	if !cw.wrote {
		cw.wrote = true
		cw.write(cw.ResponseWriter)
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cookieWriter) Write(b []byte) (int, error) {
	if !cw.wrote {
		cw.wrote = true
		cw.write(cw.ResponseWriter)
	}
	return cw.ResponseWriter.Write(b)
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewSigningKey produces a random key for configs that do not set one.
// Sessions will not survive a restart with an ephemeral key.
func NewSigningKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
