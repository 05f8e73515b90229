package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/fabquote/internal/calc"
	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/config"
	"github.com/Simplici0/fabquote/internal/db"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
	"github.com/Simplici0/fabquote/internal/llm"
	"github.com/Simplici0/fabquote/internal/logger"
	"github.com/Simplici0/fabquote/internal/migrations"
	"github.com/Simplici0/fabquote/internal/questions"
	"github.com/Simplici0/fabquote/internal/seed"
	"github.com/Simplici0/fabquote/internal/session"
	"github.com/Simplici0/fabquote/internal/store"
)

const shutdownTimeout = 15 * time.Second

type shopProfiles interface {
	domain.ShopStore
	UpdateShop(ctx context.Context, sh domain.Shop) error
}

type server struct {
	auth      *authService
	sessions  *session.Service
	quotes    domain.QuoteStore
	customers domain.CustomerStore
	shops     shopProfiles
	validator *labor.Validator
	engine    *calc.Engine
	log       *logger.Logger

	// pricesMu serializes price updates so each catalog rebuild sees the
	// previous one's row.
	pricesMu sync.Mutex
	prices   priceBook
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn("config: " + w)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatal("failed to run database migrations", "error", err)
		}
	}

	if err := runSeed(database, cfg, log); err != nil {
		log.Fatal("failed to seed database", "error", err)
	}

	srv, err := newServer(context.Background(), database, cfg, log)
	if err != nil {
		log.Fatal("failed to build server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func runSeed(database *sql.DB, cfg config.Config, log *logger.Logger) error {
	prices := map[string]catalog.SeededPrice{}
	if cfg.SeededPricesFile != "" {
		f, err := os.Open(cfg.SeededPricesFile)
		if err != nil {
			return fmt.Errorf("open seeded prices: %w", err)
		}
		defer f.Close()
		if prices, err = catalog.LoadSeededPrices(f); err != nil {
			return err
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Rates:         domain.Rates{InShop: cfg.RateInShop, OnSite: cfg.RateOnSite},
		MarkupDefault: cfg.MarkupDefault,
		SeededPrices:  prices,
	})
	if err != nil {
		return err
	}
	log.Info("seed complete", "inserts", stats.Inserts, "updates", stats.Updates)
	return nil
}

// newServer wires the pipeline onto an open, migrated database.
func newServer(ctx context.Context, database *sql.DB, cfg config.Config, log *logger.Logger) (*server, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required to sign session tokens")
	}
	st := store.New(database)

	seeded, err := st.SeededPrices(ctx)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(catalog.WithSeededPrices(seeded))
	log.Info("catalog loaded", "seeded_prices", cat.SeededCount())

	lib, err := questions.Load()
	if err != nil {
		return nil, fmt.Errorf("load question trees: %w", err)
	}

	clientOpts := []llm.ClientOption{llm.WithModel(cfg.LLMModel), llm.WithHTTPTimeout(cfg.Timeouts.HTTP)}
	if cfg.LLMAzure {
		clientOpts = append(clientOpts, llm.WithAzureKeyHeader())
	}
	client := llm.NewClient(cfg.LLMEndpoint, cfg.LLMAPIKey, log, clientOpts...)

	validator := labor.NewValidator(st, st, log)
	engine := calc.NewEngine(cat, log, calc.WithCompleter(client), calc.WithTimeout(cfg.Timeouts.Calc))
	svc := session.NewService(session.Deps{
		Store:     st,
		Quotes:    st,
		Shops:     st,
		Library:   lib,
		Extractor: questions.NewExtractor(client, log, questions.WithTimeouts(cfg.Timeouts.Extract, cfg.Timeouts.Photo)),
		Engine:    engine,
		Estimator: labor.NewEstimator(client, log, labor.WithTimeout(cfg.Timeouts.Labor)),
		Validator: validator,
		Log:       log,
	}, session.WithDefaults(domain.Rates{InShop: cfg.RateInShop, OnSite: cfg.RateOnSite}, cfg.MarkupDefault))

	return &server{
		auth:      newAuthService(database, cfg.SessionSecret),
		sessions:  svc,
		quotes:    st,
		customers: st,
		shops:     st,
		validator: validator,
		engine:    engine,
		log:       log,
		prices:    st,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.middleware)

		r.Get("/api/auth/me", s.handleProfile)
		r.Put("/api/auth/profile", s.handleProfileUpdate)

		r.Route("/api/session", func(r chi.Router) {
			r.Post("/start", s.handleSessionStart)
			r.Post("/{id}/answer", s.handleSessionAnswer)
			r.Get("/{id}/status", s.handleSessionStatus)
			r.Post("/{id}/calculate", s.handleSessionCalculate)
			r.Post("/{id}/estimate", s.handleSessionEstimate)
			r.Post("/{id}/price", s.handleSessionPrice)
			r.Post("/{id}/markup", s.handleSessionMarkup)
		})

		r.Route("/api/quotes", func(r chi.Router) {
			r.Get("/", s.handleQuotesList)
			r.Get("/{id}", s.handleQuoteDetail)
			r.Get("/{id}/text", s.handleQuoteText)
			r.Post("/{id}/actuals", s.handleRecordActual)
			r.Put("/{id}/customer", s.handleQuoteCustomer)
		})

		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", s.handleCustomersList)
			r.Post("/", s.handleCustomerCreate)
			r.Get("/{id}", s.handleCustomerDetail)
			r.Patch("/{id}", s.handleCustomerUpdate)
			r.Get("/{id}/quotes", s.handleCustomerQuotes)
		})

		r.Route("/api/materials", func(r chi.Router) {
			r.Get("/", s.handleMaterialsList)
			r.Patch("/{profile}", s.handleMaterialUpdate)
		})
	})

	return r
}
