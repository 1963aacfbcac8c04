package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MiulesiKulasekara/cart-service/internal/cache"
	"github.com/MiulesiKulasekara/cart-service/internal/catalog"
	"github.com/MiulesiKulasekara/cart-service/internal/config"
	"github.com/MiulesiKulasekara/cart-service/internal/coupon"
	carthttp "github.com/MiulesiKulasekara/cart-service/internal/http"
	"github.com/MiulesiKulasekara/cart-service/internal/poller"
	"github.com/MiulesiKulasekara/cart-service/internal/repository"
	"github.com/MiulesiKulasekara/cart-service/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)

	ctx := context.Background()
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	store := repository.NewMongoStore(mongoDB)
	logger.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	cartCache := cache.NewRedisCache(redisClient)
	products := catalog.NewClient(cfg.ProductServiceURL, cfg.ResolverTimeout)
	coupons := coupon.NewClient(cfg.CouponServiceURL, cfg.ResolverTimeout)

	svc := service.NewCartService(store, cartCache, products, coupons, cfg.MaxCartItems, logger)

	// Empty carts when checkout events arrive
	pollerCtx, cancelPoller := context.WithCancel(ctx)
	checkoutPoller := poller.NewPoller(svc, logger, cfg.KafkaBrokers...)
	go checkoutPoller.Run(pollerCtx)

	handler := carthttp.NewCartHandler(svc, cfg.RequestTimeout)
	router := carthttp.NewRouter(handler, logger, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("cart service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down cart service...")
	cancelPoller()
	checkoutPoller.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongo disconnect failed")
	}
	logger.Info().Msg("cart service stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "cart-service").
		Logger()
}
