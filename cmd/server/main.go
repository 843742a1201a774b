package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashion-order-service/internal/cache"
	"fashion-order-service/internal/config"
	"fashion-order-service/internal/controller"
	"fashion-order-service/internal/job"
	"fashion-order-service/internal/logging"
	"fashion-order-service/internal/metrics"
	"fashion-order-service/internal/middleware"
	"fashion-order-service/internal/rabbit"
	"fashion-order-service/internal/repository"
	"fashion-order-service/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Options{Level: logging.ParseLevel(cfg.LogLevel), Format: cfg.LogFormat})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("el servicio terminó con error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositorios
	orderRepo, couponRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Rabbit es opcional: sin conexión los cambios de estado no se publican
	var publisher service.EventPublisher
	conn, ch := dialRabbit(cfg.RabbitURL, logger)
	if ch != nil {
		defer conn.Close()
		pub, err := rabbit.NewStatusPublisher(ch, cfg.ServiceName)
		if err != nil {
			logger.Warn("no se pudo declarar el exchange de estados", "error", err)
		} else {
			publisher = pub
		}
	}

	// Servicios
	couponService := service.NewCouponService(couponRepo, cache.NewCouponCache(cfg.CouponCacheTTL), logger)
	orderService := service.NewOrderStatusService(orderRepo, couponService, publisher, logger)
	authService := service.NewAuthService(cfg.AuthURL)

	if ch != nil {
		consumer := rabbit.NewPlaceOrderConsumer(orderService, logger)
		if err := rabbit.SetupConsumers(ctx, ch, consumer, logger); err != nil {
			logger.Error("no se pudo suscribir a order_placed", "error", err)
		}
	}

	// Jobs
	scheduler := job.NewScheduler(logger)
	if _, err := scheduler.Register(cfg.SummaryCron, job.NewStatusSummaryJob(orderService, logger)); err != nil {
		return fmt.Errorf("registrar job de resumen: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// Router
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(middleware.LoggingConfig{Logger: logger, SkipPaths: []string{"/health", "/metrics"}}))
	r.Use(metrics.Middleware("/health", "/metrics"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	controller.RegisterRoutes(r,
		controller.NewOrderController(orderService),
		controller.NewCouponController(couponService),
		middleware.AuthMiddleware(authService, logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Order Status Service ejecutándose", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("apagando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.OrderRepository, service.CouponRepository, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("usando almacenamiento en memoria, los datos no persisten")
		return repository.NewMemoryOrderRepository(), repository.NewMemoryCouponRepository(), func() {}, nil
	}

	// Conexión a MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI).SetRegistry(repository.NewRegistry()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("conectar a mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, nil, fmt.Errorf("ping a mongo: %w", err)
	}
	db := client.Database(cfg.MongoDBName)

	orders := repository.NewMongoOrderRepository(db)
	coupons := repository.NewMongoCouponRepository(db)
	if err := orders.EnsureIndexes(connectCtx); err != nil {
		return nil, nil, nil, fmt.Errorf("índices de orders: %w", err)
	}
	if err := coupons.EnsureIndexes(connectCtx); err != nil {
		return nil, nil, nil, fmt.Errorf("índices de coupons: %w", err)
	}

	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Error("error cerrando mongo", "error", err)
		}
	}
	return orders, coupons, closeFn, nil
}

// dialRabbit devuelve nil si no hay URL o si la conexión falla.
func dialRabbit(url string, logger *slog.Logger) (*amqp091.Connection, *amqp091.Channel) {
	if url == "" {
		logger.Info("RABBIT_URL vacío, sin mensajería")
		return nil, nil
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		logger.Error("Error conectando a RabbitMQ", "error", err)
		return nil, nil
	}
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Error creando canal en RabbitMQ", "error", err)
		_ = conn.Close()
		return nil, nil
	}
	return conn, ch
}
