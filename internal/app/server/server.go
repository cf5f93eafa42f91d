package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/account"
	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/benefit"
	"erphrm/internal/domain/contract"
	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/leave"
	"erphrm/internal/domain/payroll"
	"erphrm/internal/domain/reports"
	"erphrm/internal/platform/config"
	"erphrm/internal/platform/kvstore"
	accounthandler "erphrm/internal/transport/http/handlers/account"
	authhandler "erphrm/internal/transport/http/handlers/auth"
	benefithandler "erphrm/internal/transport/http/handlers/benefit"
	contracthandler "erphrm/internal/transport/http/handlers/contract"
	directoryhandler "erphrm/internal/transport/http/handlers/directory"
	leavehandler "erphrm/internal/transport/http/handlers/leave"
	payrollhandler "erphrm/internal/transport/http/handlers/payroll"
	reportshandler "erphrm/internal/transport/http/handlers/reports"
	"erphrm/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Store  *kvstore.Store
	Router http.Handler

	engine kvstore.Engine
}

// New assembles the full application: engine, stores, seed data, routes.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := kvstore.New(engine)

	directoryStore := directory.NewStore(store)
	accountStore := account.NewStore(store)
	contractStore := contract.NewStore(store)
	leaveStore := leave.NewStore(store)
	benefitStore := benefit.NewStore(store)
	payrollStore := payroll.NewStore(store)
	reportsStore := reports.NewStore(store)

	if cfg.SeedDefaultAccounts {
		if err := accountStore.Seed(ctx, defaultAccounts(cfg.SeedAdminPassword)); err != nil {
			return nil, fmt.Errorf("seed accounts: %w", err)
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if pinger, ok := engine.(interface{ Ping(context.Context) error }); ok {
			if err := pinger.Ping(ctx); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(accountStore, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/reset-password", authHandler.HandleResetPassword)
		r.Get("/auth/me", authHandler.HandleMe)

		directoryhandler.NewHandler(directoryStore).RegisterRoutes(r)
		accounthandler.NewHandler(accountStore).RegisterRoutes(r)
		contracthandler.NewHandler(contractStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveStore).RegisterRoutes(r)
		benefithandler.NewHandler(benefitStore).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportsStore).RegisterRoutes(r)
	})

	return &App{Config: cfg, Store: store, Router: router, engine: engine}, nil
}

func openEngine(ctx context.Context, cfg config.Config) (kvstore.Engine, error) {
	switch cfg.StoreDriver {
	case "memory":
		return kvstore.NewMemoryEngine(), nil
	case "file":
		return kvstore.NewFileEngine(cfg.StoreFile)
	case "postgres":
		return kvstore.NewPostgresEngine(ctx, cfg.DatabaseURL)
	case "redis":
		return kvstore.NewRedisEngine(ctx, kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// defaultAccounts mirrors the portal's bootstrap logins, one per role.
func defaultAccounts(password string) []account.NewAccount {
	return []account.NewAccount{
		{Username: "admin", Role: auth.RoleAdmin, Password: password},
		{Username: "hr", Role: auth.RoleHRManager, Password: password},
		{Username: "sales", Role: auth.RoleSales, Password: password},
		{Username: "finance", Role: auth.RoleFinance, Password: password},
		{Username: "supplychain", Role: auth.RoleSupplyChain, Password: password},
	}
}

func (a *App) Close() error {
	if a.engine != nil {
		return a.engine.Close()
	}
	return nil
}

func Run() {
	cfg := config.Load()
	ctx := context.Background()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("store close failed: %v", err)
		}
	}()

	log.Printf("ERP HRM server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
