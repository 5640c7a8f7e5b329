package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"golang.org/x/text/language"

	"money-transfers/internal/config"
	"money-transfers/internal/domain"
	"money-transfers/internal/handler"
	"money-transfers/internal/messaging"
	"money-transfers/internal/money"
	"money-transfers/internal/repository"
	"money-transfers/internal/service"
)

const redisPollTimeout = time.Second

// Server owns the HTTP listener, the database and the order pipeline.
type Server struct {
	router    *mux.Router
	server    *http.Server
	db        *sql.DB
	logger    *slog.Logger
	port      string
	conn      messaging.Conn
	container *messaging.Container
	closeBus  func() error
}

// NewServer connects to the database and the broker and wires every
// component. Nothing is started yet.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to database")

	if cfg.MigrateOnStart {
		if err := repository.RunMigrations(logger, cfg.GetDatabaseURL()); err != nil {
			db.Close()
			return nil, err
		}
	}

	broker, closeBus, err := newBroker(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	conn, err := broker.Dial(context.Background())
	if err != nil {
		closeBus()
		db.Close()
		return nil, fmt.Errorf("dial %s broker: %w", cfg.Broker, err)
	}

	store := repository.NewStore(db, logger)
	producer := messaging.NewProducer(conn, cfg.OrdersQueue)

	accountService := service.NewAccountService(store, logger)
	rateService := service.NewExchangeRateService(store, logger)
	orderService := service.NewOrderService(store, producer, logger)

	worker := service.NewOrderWorker(
		store.Order(),
		store.Account(),
		service.NewCurrencyConverter(store.ExchangeRate()),
		money.NewFormatter(language.English),
		logger,
	)
	container := messaging.NewContainer(
		broker,
		cfg.OrdersQueue,
		cfg.ConsumerCount(),
		messaging.JSONListener[domain.Order](worker.Accept),
		logger,
	)

	router := newRouter(logger,
		handler.NewAccountHandler(accountService),
		handler.NewOrderHandler(orderService),
		handler.NewExchangeRateHandler(rateService),
		handler.NewHealthHandler(db),
	)

	return &Server{
		router:    router,
		db:        db,
		logger:    logger,
		conn:      conn,
		container: container,
		closeBus:  closeBus,
	}, nil
}

func newBroker(cfg *config.Config) (messaging.Broker, func() error, error) {
	switch cfg.Broker {
	case config.BrokerMemory:
		return messaging.NewMemoryBroker(0), func() error { return nil }, nil
	case config.BrokerRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		broker := messaging.NewRedisBroker(client, redisPollTimeout)
		return broker, broker.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported broker %q", cfg.Broker)
	}
}

func newRouter(
	logger *slog.Logger,
	accountHandler *handler.AccountHandler,
	orderHandler *handler.OrderHandler,
	rateHandler *handler.ExchangeRateHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	// Account routes
	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST", "PUT")
	router.HandleFunc("/accounts/{account_id}", accountHandler.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{account_id}", accountHandler.UpdateAccount).Methods("PUT")

	// Exchange rate routes
	router.HandleFunc("/rates", rateHandler.CreateRate).Methods("POST")
	router.HandleFunc("/rates", rateHandler.PutRate).Methods("PUT")
	router.HandleFunc("/rates", rateHandler.ListRates).Methods("GET")
	router.HandleFunc("/rates/{from}/{to}", rateHandler.GetRate).Methods("GET")

	// Order routes
	router.HandleFunc("/orders", orderHandler.SubmitOrder).Methods("POST")
	router.HandleFunc("/orders", orderHandler.ListOrders).Methods("GET")
	router.HandleFunc("/orders/{order_id}", orderHandler.GetOrder).Methods("GET")

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")

	return router
}

func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start launches the order consumers and then the HTTP listener. port "0"
// picks a free port; the chosen one is returned.
func (s *Server) Start(port string) (string, error) {
	if err := s.container.Start(context.Background()); err != nil {
		return "", fmt.Errorf("start order consumers: %w", err)
	}

	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		s.container.Stop()
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.server = &http.Server{
		Handler:      c.Handler(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop shuts HTTP down first so no new orders arrive, then drains the
// consumers before closing the broker and the database.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var errs []error
	if s.server != nil {
		errs = append(errs, s.server.Shutdown(ctx))
	}
	errs = append(errs, s.container.Stop())
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.closeBus != nil {
		errs = append(errs, s.closeBus())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) GetPort() string {
	return s.port
}

func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer builds and starts a server. Port "0" is treated as a test run
// and logs are discarded.
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		server.Stop(context.Background())
		return nil, "", err
	}

	return server, port, nil
}
