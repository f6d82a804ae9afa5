package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/accountsvc/apiserver/config"
	"github.com/accountsvc/apiserver/internal/auth"
	"github.com/accountsvc/apiserver/internal/db"
	"github.com/accountsvc/apiserver/internal/handlers"
	"github.com/accountsvc/apiserver/internal/ids"
	"github.com/accountsvc/apiserver/internal/logging"
	"github.com/accountsvc/apiserver/internal/mq"
	"github.com/accountsvc/apiserver/internal/services"
	"github.com/accountsvc/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	logger     zerolog.Logger
}

// New connects to Postgres (and the event broker when configured) and
// wires the account service graph.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	opts := []services.Option{
		services.WithLogger(logger.With().Str("component", "accounts").Logger()),
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open mq: %w", err)
	}
	if broker != nil {
		events, err := mq.NewAccountEvents(broker, cfg.MQ.Channel)
		if err != nil {
			_ = broker.Close()
			_ = dbConn.Close()
			return nil, err
		}
		opts = append(opts, services.WithEvents(events))
	}

	accountService := services.NewAccountService(
		store.NewAccountRepository(dbConn),
		ids.NewUUIDGenerator(),
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		opts...,
	)

	router := NewRouter(accountService, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
		logger:     logger,
	}, nil
}

// NewRouter builds the HTTP routes around an account service.
func NewRouter(accounts handlers.AccountService, logger zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/accounts", func(r chi.Router) {
		handlers.AccountRouter(r, accounts, logger)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run starts the server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		s.closeResources()
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and releases the database and broker.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("close mq")
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
