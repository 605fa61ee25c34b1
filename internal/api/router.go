package api

import (
	"log/slog"
	"net/http"

	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Ledger      Ledger
	Auth        Authenticator
	Catalog     Catalog
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter constructs the chi router with all API endpoints registered.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := NewHandler(d.Ledger, d.Auth, d.Catalog, logger)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Health)
		r.Post("/auth/login", h.Login)

		// public card page
		r.Get("/cards/{cardId}", h.GetCard)
		r.Get("/cards/{cardId}/qr", h.GetCardQR)
		r.Get("/cards/{cardId}/transactions", h.GetCardTransactions)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/booths/{boothId}", h.GetBooth)
			r.Get("/booths/{boothId}/items", h.ListBoothItems)

			r.With(requireRole(ledger.RoleCashier)).Post("/cards", h.IssueCard)
			r.With(requireRole(ledger.RoleCashier)).Post("/credit", h.Credit)
			r.With(requireRole(ledger.RoleCashier)).Get("/transactions", h.ListTransactions)

			r.With(requireRole(ledger.RoleBooth)).Post("/debit", h.Debit)
		})
	})

	return r
}
