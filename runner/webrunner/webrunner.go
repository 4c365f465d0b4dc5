package webrunner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/config"
	"github.com/menuqr/menuqr/invite"
	"github.com/menuqr/menuqr/postgres"
	"github.com/menuqr/menuqr/runner"
	stripeclient "github.com/menuqr/menuqr/stripe"
	"github.com/menuqr/menuqr/web/auth"
	"github.com/menuqr/menuqr/web/handlers"
	"github.com/menuqr/menuqr/web/middleware"
)

type webrunner struct {
	cfg *runner.Config
	srv *http.Server
	db  *sql.DB
}

// New wires the database, services, and HTTP server from the config.
func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.Dsn == "" {
		return nil, errors.New("database connection string is required")
	}

	if !cfg.SkipMigrations {
		if err := postgres.NewMigrationRunner(cfg.Dsn).RunMigrations(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db, err := sql.Open("pgx", cfg.Dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger := log.New(os.Stdout, "[web] ", log.LstdFlags)

	userRepo := postgres.NewUserRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	restaurantRepo := postgres.NewRestaurantRepository(db)
	menuRepo := postgres.NewMenuRepository(db)
	cfgSvc := config.New(db)

	stripeCli := stripeclient.NewClient(cfg.StripeSecretKey)

	authMw, err := auth.NewAuthMiddleware(cfg.ClerkAPIKey, userRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	deps := handlers.Dependencies{
		Logger:         logger,
		DB:             db,
		Cfg:            cfgSvc,
		AccessSvc:      access.NewService(userRepo, stripeCli, cfgSvc, logger),
		InviteSvc:      invite.NewService(invitationRepo, logger),
		UserRepo:       userRepo,
		RestaurantRepo: restaurantRepo,
		MenuRepo:       menuRepo,
		StripeClient:   stripeCli,
		WebhookSecret:  cfg.WebhookSecret,
		Auth:           authMw,
		Validate:       validator.New(),
	}

	router := mux.NewRouter()
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.RequestLogger(logger))

	handlers.NewHandlerGroup(deps).Register(router, deps)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &webrunner{cfg: cfg, srv: srv, db: db}, nil
}

func (w *webrunner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return w.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (w *webrunner) Close(context.Context) error {
	return w.db.Close()
}
