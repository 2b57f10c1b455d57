package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/novamart/storefront/internal/cache"
	"github.com/novamart/storefront/internal/config"
	h "github.com/novamart/storefront/internal/http"
	"github.com/novamart/storefront/internal/lock"
	"github.com/novamart/storefront/internal/notification"
	"github.com/novamart/storefront/internal/payment"
	"github.com/novamart/storefront/internal/publisher"
	"github.com/novamart/storefront/internal/repository"
	"github.com/novamart/storefront/internal/service"
	"github.com/novamart/storefront/pkg/circuitbreaker"
	"github.com/novamart/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.New("storefront", cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("storefront stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Catalog (SQLite)
	catalogDB, err := repository.OpenSQLite(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer catalogDB.Close()
	if err := repository.RunSQLiteMigrations(catalogDB, cfg.Catalog.MigrationsPath); err != nil {
		return err
	}
	catalog := repository.NewCatalogRepository(catalogDB)
	log.Info("catalog ready", slog.String("path", cfg.Catalog.Path))

	// Carts (MongoDB)
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		return err
	}
	defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()
	carts := repository.NewMongoRepository(mongoDB)
	if err := repository.EnsureIndexes(ctx, carts); err != nil {
		return err
	}
	log.Info("connected to MongoDB", slog.String("db", cfg.Mongo.DBName))

	// Orders, payments, outbox, notifications (Postgres)
	pgDB, err := repository.OpenPostgres(ctx, &repository.Credentials{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
	})
	if err != nil {
		return err
	}
	if err := repository.RunPostgresMigrations(pgDB, cfg.Postgres.MigrationsPath); err != nil {
		return err
	}
	orders := repository.NewPostgresRepository(pgDB)
	defer orders.Close()
	log.Info("connected to Postgres", slog.String("db", cfg.Postgres.DBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Info("redis ping succeeded", slog.String("addr", cfg.Redis.Addr))

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.UseRedisLock {
		locker = lock.NewRedisLocker(redisClient, cfg.LockTTL, log)
	}

	var emails notification.EmailQueue = notification.NoopEmailQueue{}
	if cfg.AMQP.Enabled {
		amqpConn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			return err
		}
		defer amqpConn.Close()
		amqpCh, err := amqpConn.Channel()
		if err != nil {
			return err
		}
		defer amqpCh.Close()
		if err := notification.DeclareQueue(amqpCh, cfg.AMQP.Queue); err != nil {
			return err
		}
		emails = notification.NewAMQPEmailQueue(amqpCh, cfg.AMQP.Queue)
		log.Info("connected to RabbitMQ", slog.String("queue", cfg.AMQP.Queue))
	} else {
		log.Warn("AMQP disabled, order emails will be dropped")
	}

	gateway := payment.NewRandomGateway(
		payment.WithSuccessRate(cfg.Payment.CardSuccessRate),
		payment.WithLatency(cfg.Payment.CardLatency),
	)
	breaker := circuitbreaker.New[payment.Receipt](circuitbreaker.DefaultSettings("card-gateway"), log)
	processor := payment.NewProcessor(
		payment.NewCashStrategy(log),
		payment.NewCardStrategy(gateway, breaker, log),
		cfg.Payment.Timeout,
		log,
	)

	dispatcher := notification.NewDispatcher(orders, orders, emails, log)
	cartService := service.NewCartService(carts, catalog, cache.NewRedisCache(redisClient, cfg.CartCacheTTL), locker, log)
	checkoutService := service.NewCheckoutService(cartService, catalog, orders, processor, dispatcher, locker, log, cfg.NotifyTimeout)
	orderService := service.NewOrderService(orders)

	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(catalog, log),
		Cart:     h.NewCartHandler(cartService, log),
		Checkout: h.NewCheckoutHandler(checkoutService, processor, log),
		Orders:   h.NewOrdersHandler(orderService, dispatcher, log),
	}, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	writer := publisher.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
	defer writer.Close()
	poller := publisher.NewOutboxPoller(orders, writer, cfg.OutboxPollInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("storefront listening", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		poller.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
