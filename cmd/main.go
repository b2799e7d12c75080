// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
//
// Usage:
//
//	main        serve the API
//	main seed   apply the schema and load the demo inventory, then exit
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/config"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/database"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/handler"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/logger"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/notify"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/payment"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/repository"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx := context.Background()

	// ── 1. Open the store ─────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store")
	}
	defer closeStore()

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := repository.Seed(ctx, store.(repository.InventoryWriter)); err != nil {
			log.WithError(err).Fatal("seed")
		}
		log.Info("demo inventory loaded")
		return
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	gateway, err := newGateway(cfg)
	if err != nil {
		log.WithError(err).Fatal("payment gateway")
	}
	notifier, closeNotifier := newNotifier(cfg, log)
	defer closeNotifier()

	svc := service.NewReservationService(store, gateway, notifier, log)
	h := handler.NewReservationHandler(svc, log)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = database.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Fatal("redis")
		}
		defer rdb.Close()
		log.Info("✓ Connected to Redis")
	}
	limitStore, err := handler.NewLimiterStore(rdb)
	if err != nil {
		log.WithError(err).Fatal("rate limiter")
	}
	bookingLimit, err := handler.RateLimit(limitStore, cfg.RateLimit, log)
	if err != nil {
		log.WithError(err).Fatal("rate limiter")
	}

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.NewRouter(h, log, bookingLimit),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Infof("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	svc.Wait()
	log.Info("server stopped")
}

// openStore returns the configured store and a function releasing it. The
// memory store is seeded on start since it has nothing else to load from.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (service.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		mem := repository.NewMemoryStore()
		if err := repository.Seed(ctx, mem); err != nil {
			return nil, nil, err
		}
		log.Info("✓ Using in-memory store with demo inventory")
		return mem, func() {}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("✓ Connected to PostgreSQL")
	return repository.NewStore(pool), pool.Close, nil
}

func newGateway(cfg *config.Config) (payment.Authorizer, error) {
	switch cfg.PaymentGateway {
	case config.GatewayRazorpay:
		return payment.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.PaymentCurrency), nil
	case config.GatewaySandbox:
		return payment.NewSandbox(), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.PaymentGateway)
	}
}

// newNotifier always logs confirmations and adds email and broker delivery
// when they are configured. A broker that cannot be reached is skipped.
func newNotifier(cfg *config.Config, log *logrus.Logger) (notify.Notifier, func()) {
	notifiers := notify.Multi{notify.NewLog(log)}
	closer := func() {}

	if cfg.SMTP.Host != "" {
		notifiers = append(notifiers, notify.NewSMTPMailer(cfg.SMTP))
		log.Infof("✓ Confirmation emails via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	}
	if cfg.AMQPURL != "" {
		pub, err := notify.DialPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Warn("booking events disabled")
		} else {
			notifiers = append(notifiers, pub)
			closer = func() { _ = pub.Close() }
			log.Infof("✓ Publishing booking events to exchange %s", cfg.AMQPExchange)
		}
	}
	return notifiers, closer
}
