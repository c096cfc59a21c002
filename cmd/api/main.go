// Command api runs the multi-tenant HTTP API. Requests authenticate against
// the master database, then all data operations are routed to the caller's
// own tenant database.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/config"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/httpserver"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/jwt"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/logger"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/pg"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenant"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenantdb"
	"github.com/AlphaDigitAll/xQuantum-API/svc/auth"
	"github.com/AlphaDigitAll/xQuantum-API/svc/productcolumns"
)

type appConfig struct {
	Logger   logger.Config
	Master   pg.Config
	JWT      jwt.Config
	Cache    tenantdb.RegistryConfig
	TenantDB tenantdb.DirectoryConfig
	HTTP     httpserver.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.MustNew(cfg.Logger, slog.String("service", "xquantum-api"))

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	master, err := pg.Connect(ctx, cfg.Master)
	if err != nil {
		return err
	}
	defer master.Close()

	tokens, err := jwt.NewFromString(cfg.JWT.Secret)
	if err != nil {
		return err
	}

	registry := tenantdb.NewRegistry(cfg.Cache, log)
	defer registry.Close()

	connector := tenantdb.NewPoolConnector()
	defer connector.Close()

	directory := tenantdb.NewDirectory(master, cfg.TenantDB, log)
	executor := tenantdb.NewExecutor(registry, directory, connector, log)

	authService := auth.NewService(master, tokens, cfg.JWT, executor, log)
	authHandler := auth.NewHandler(authService, log)
	columnsHandler := productcolumns.NewHandler(productcolumns.NewService(executor))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(jwt.Middleware(tokens, func(w http.ResponseWriter, r *http.Request, err error) {
		response.Fail(w, http.StatusUnauthorized, "Invalid authentication token.")
	}))
	r.Use(tenant.ResolveMiddleware(log))

	r.Get("/health", httpserver.HealthHandler(log, func(r *http.Request) error {
		return master.Ping(r.Context())
	}))
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Group(func(r chi.Router) {
			r.Use(tenant.GuardMiddleware(log))
			r.Mount("/sub-product-columns", columnsHandler.Routes())
		})
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, r)
}
