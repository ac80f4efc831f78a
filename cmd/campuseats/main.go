package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"campuseats/internal/broker"
	"campuseats/internal/cache"
	"campuseats/internal/cart"
	"campuseats/internal/config"
	"campuseats/internal/database"
	"campuseats/internal/handler"
	"campuseats/internal/service"
	"campuseats/internal/worker"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("application stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(ctx, db); err != nil {
		return err
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher worker.Publisher = broker.LogPublisher{}
	if cfg.AMQPURL != "" {
		mq, err := broker.ConnectRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer mq.Close()
		publisher = mq
	}

	// Services
	authSvc := service.NewAuthService(database.NewUserRepo(db), cfg.JWTSecret, cfg.TokenTTL).
		RequireRestaurantCode(cfg.RestaurantSignupCode)
	if cfg.RestaurantSignupCode == "" {
		slog.Warn("restaurant signup is open to anyone, set RESTAURANT_SIGNUP_CODE to restrict it")
	}
	productSvc := service.NewProductService(database.NewProductRepo(db))
	cartSvc := service.NewCartService(cache.NewCartStore(redisClient, cfg.CartTTL), productSvc, cart.RateFromPercent(cfg.TaxRate))
	orderSvc := service.NewOrderService(database.NewOrderRepo(db), cartSvc)

	if err := productSvc.Load(ctx); err != nil {
		return err
	}
	if err := orderSvc.Load(ctx); err != nil {
		return err
	}

	// Worker
	notifyWorker := worker.NewNotifyWorker(orderSvc, publisher, cfg.NotifyInterval)

	srv := &http.Server{
		Addr: cfg.RunAddress,
		Handler: handler.NewRouter(handler.Services{
			Auth:     authSvc,
			Products: productSvc,
			Carts:    cartSvc,
			Orders:   orderSvc,
		}, cfg.JWTSecret),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return notifyWorker.Start(gctx)
	})

	g.Go(func() error {
		slog.Info("starting server", "addr", cfg.RunAddress, "tax_rate", cfg.TaxRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShut()
		if err := srv.Shutdown(ctxShut); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("server stopped")
	return err
}
