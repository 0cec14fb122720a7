// Package devapi assembles the development REST backend the back-office
// client talks to.
package devapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-backoffice/internal/app"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/observability"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/db"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-backoffice/internal/shared"
)

// Services holds the domain services of the backend.
type Services struct {
	Branches   *branches.Service
	Categories *categories.Service
	Products   *products.Service
	Customers  *customers.Service
}

// NewServices wires the services over the given repositories, including the
// cross-resource usage checks that guard deletes.
func NewServices(b branches.Repository, c categories.Repository, p products.Repository, cu customers.Repository) Services {
	branchSvc := branches.NewService(b)
	categorySvc := categories.NewService(c, branchSvc)
	productSvc := products.NewService(p, categorySvc)
	customerSvc := customers.NewService(cu, branchSvc)
	categorySvc.UseProducts(productSvc)
	branchSvc.TrackUsage("customers", customerSvc)
	branchSvc.TrackUsage("products", productSvc)
	branchSvc.TrackUsage("categories", categorySvc)
	return Services{Branches: branchSvc, Categories: categorySvc, Products: productSvc, Customers: customerSvc}
}

// MemoryServices builds services over empty in-memory repositories.
func MemoryServices() Services {
	return NewServices(
		branches.NewMemoryRepository(),
		categories.NewMemoryRepository(),
		products.NewMemoryRepository(),
		customers.NewMemoryRepository(),
	)
}

// PostgresServices builds services over pool. The schema must exist.
func PostgresServices(pool *pgxpool.Pool) Services {
	return NewServices(
		branches.NewRepository(pool),
		categories.NewRepository(pool),
		products.NewRepository(pool),
		customers.NewRepository(pool),
	)
}

// Server is an assembled backend.
type Server struct {
	Handler  http.Handler
	Services Services
	Metrics  *observability.Metrics

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Options override the stores chosen from configuration. Tests pass a
// miniredis client here.
type Options struct {
	Redis             *redis.Client
	DisableRequestLog bool
}

// New builds the backend. PostgreSQL is used when PG_DSN is set, memory
// otherwise. Idempotency keys are tracked when Redis is available.
func New(ctx context.Context, cfg *app.ServerConfig, logger *slog.Logger, opts Options) (*Server, error) {
	srv := &Server{Metrics: observability.NewMetrics(), redis: opts.Redis}

	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		srv.pool = pool
		srv.Services = PostgresServices(pool)
		logger.Info("using postgres storage")
	} else {
		srv.Services = MemoryServices()
		logger.Info("using in-memory storage")
	}

	if srv.redis == nil && cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, idempotency keys disabled", slog.Any("error", err))
		} else {
			srv.redis = client
		}
	}
	var idem *shared.IdempotencyStore
	if srv.redis != nil {
		idem = shared.NewIdempotencyStore(srv.redis, cfg.IdempotencyTTL)
	}

	if cfg.Seed {
		if err := Seed(ctx, srv.Services); err != nil {
			srv.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	srv.Handler = app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		BranchHandler:     branches.NewHandler(logger, srv.Services.Branches, srv.Metrics),
		CategoryHandler:   categories.NewHandler(logger, srv.Services.Categories, srv.Metrics, cfg.LegacyCategories),
		ProductHandler:    products.NewHandler(logger, srv.Services.Products, srv.Metrics),
		CustomerHandler:   customers.NewHandler(logger, srv.Services.Customers, srv.Metrics),
		Idempotency:       idem,
		Metrics:           srv.Metrics,
		DisableRequestLog: opts.DisableRequestLog,
	})
	return srv, nil
}

// Close releases database and cache connections.
func (s *Server) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
