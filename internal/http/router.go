package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/stockroom/internal/http/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/http/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/http/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/http/order"
	"github.com/MrJamesThe3rd/stockroom/internal/http/unit"
)

type Handlers struct {
	Orders  *order.Handler
	Sales   *order.Handler
	Batches *batch.Handler
	Defects *defect.Handler
	Units   *unit.Handler
	Ledger  *ledger.Handler
	Metrics http.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Use(jsonBody)
			h.Orders.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(jsonBody)
			h.Sales.Routes(r)
		})

		r.Route("/batches", h.Batches.Routes)

		r.Route("/defects", func(r chi.Router) {
			r.Use(jsonBody)
			h.Defects.Routes(r)
		})

		r.Route("/units", h.Units.Routes)
		r.Route("/ledger", h.Ledger.Routes)
	})

	return router
}

// jsonBody rejects bodies that are not JSON. Requests without a body pass.
var jsonBody = middleware.AllowContentType("application/json")
