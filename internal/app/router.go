package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/observability"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-backoffice/internal/shared"
)

// APIPrefix is the mount point of the resource routes.
const APIPrefix = "/api/v1"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *ServerConfig
	BranchHandler     *branches.Handler
	CategoryHandler   *categories.Handler
	ProductHandler    *products.Handler
	CustomerHandler   *customers.Handler
	Idempotency       *shared.IdempotencyStore
	Metrics           *observability.Metrics
	DisableRequestLog bool
}

// NewRouter constructs the chi.Router with dev API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.DisableRequestLog {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		mount := func(path, module string, routes func(chi.Router)) {
			r.Route(path, func(r chi.Router) {
				r.Use(shared.Idempotent(params.Idempotency, module, params.Logger, params.Metrics.ObserveReplay))
				routes(r)
			})
		}
		if params.BranchHandler != nil {
			mount("/branches", "branches", params.BranchHandler.MountRoutes)
		}
		if params.CustomerHandler != nil {
			mount("/customers", "customers", params.CustomerHandler.MountRoutes)
		}
		if params.ProductHandler != nil {
			mount("/products", "products", params.ProductHandler.MountRoutes)
		}
		if params.CategoryHandler != nil {
			mount("/categories", "categories", params.CategoryHandler.MountRoutes)
		}
	})

	return r
}
