package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"brightcart.io/store-web/internal/config"
	mw "brightcart.io/store-web/internal/middleware"
	"brightcart.io/store-web/internal/observability"
	"brightcart.io/store-web/internal/session"
	"brightcart.io/store-web/internal/shop"
)

// Package-level collaborators, assigned in main() and by the test harness.
var (
	logger       *zap.Logger
	shopClient   *shop.Client
	sessionStore *session.Store
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err = observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	devMode = cfg.Dev
	templatesDir = cfg.TemplatesDir
	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	signKey := cfg.Session.SigningKey
	if signKey == "" {
		signKey = session.NewSigningKey()
		logger.Warn("using ephemeral session signing key; set STORE_WEB_SESSION_SIGNING_KEY for production")
	}
	sessionStore = session.NewStore(signKey, cfg.Session.Secure)
	shopClient = shop.NewClient(cfg.API.BaseURL, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("web listening", zap.String("addr", cfg.Server.Addr), zap.Bool("dev", devMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(sessionStore.Middleware)
	r.Use(sessionStore.CSRF)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", HomeHandler)
	r.Get("/products", ProductsHandler)
	r.Get("/product", ProductDetailHandler)

	r.Get("/cart", CartHandler)
	r.Post("/cart/add", CartAddHandler)
	r.Post("/cart/update", CartUpdateHandler)
	r.Post("/cart/remove", CartRemoveHandler)

	r.Get("/login", LoginPageHandler)
	r.Post("/login", LoginSubmitHandler)
	r.Get("/register", RegisterPageHandler)
	r.Post("/register", RegisterSubmitHandler)
	r.Post("/logout", LogoutHandler)

	r.Get("/profile", ProfileHandler)
	r.Post("/profile", ProfileUpdateHandler)

	r.Get("/checkout", CheckoutPageHandler)
	r.Post("/checkout", CheckoutSubmitHandler)
	r.Get("/orders", OrdersHandler)

	return r
}
