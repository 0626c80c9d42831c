package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-api/config"
	"pos-api/events"
	"pos-api/handlers"
	"pos-api/middleware"
	"pos-api/routes"
	"pos-api/seed"
	"pos-api/services"
	"pos-api/store"
	"pos-api/uploads"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gin.SetMode(cfg.GinMode)
	// Money goes out as JSON numbers, e.g. "total": 225.
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize database
	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer amqpPub.Close()
		pub = amqpPub
		logger.Info("publishing order events", "exchange", cfg.AMQPExchange)
	}

	images := uploads.New(cfg.UploadDir, cfg.UploadMaxBytes)
	if err := os.MkdirAll(images.Dir(), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	ledger := services.NewLedger(st, pub, logger, services.LedgerConfig{
		CodeAttempts: cfg.OrderCodeAttempts,
		CodeBackoff:  cfg.OrderCodeBackoff,
		WalkInName:   cfg.WalkInName,
		Location:     loc,
	})
	payments := services.NewPayments(st, pub, logger, nil)
	catalog := services.NewCatalog(st, images, logger)
	users := services.NewUsers(st, logger)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := users.EnsureAdmin(ctx, "Admin", cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	if cfg.SeedDemoData {
		s := &seed.Seeder{Store: st, Users: users, Catalog: catalog, Ledger: ledger, Log: logger}
		if err := s.Run(ctx); err != nil {
			return err
		}
	}

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.New(handlers.Deps{
		Store:         st,
		Ledger:        ledger,
		Payments:      payments,
		Catalog:       catalog,
		Stats:         services.NewStats(st, loc, nil),
		Users:         users,
		Uploads:       images,
		Auth:          auth,
		Log:           logger,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	r := gin.New()
	r.MaxMultipartMemory = cfg.UploadMaxBytes
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger), middleware.CORS(cfg.CORSOrigins))
	routes.SetupRoutes(r, h, auth, images.Dir())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
