package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aq2208/storefront-api/configs"
	"github.com/aq2208/storefront-api/internal/adapter/cache"
	api "github.com/aq2208/storefront-api/internal/adapter/http"
	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/adapter/observ"
	"github.com/aq2208/storefront-api/internal/adapter/queue"
	"github.com/aq2208/storefront-api/internal/adapter/repo"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
	Server *http.Server
}

func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// catalog
	src, closeSrc, err := catalogSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeSrc)

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	catalog, err := usecase.LoadCatalog(loadCtx, src, logging.New("catalog"))
	cancel()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Info("catalog loaded", "source", cfg.Catalog.Source, "products", catalog.Len())

	// cart persistence
	stateRepo, closeRepo, err := cartRepo(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, closeRepo)

	metrics := observ.NewMetrics(prometheus.DefaultRegisterer)
	cartLog := logging.New("cart")
	carts := usecase.NewCartsWithLimit(stateRepo, metrics, cartLog, cfg.Cart.MaxSessions)
	carts.OnChange(func(ev usecase.CartEvent) {
		cartLog.Debug("cart changed", "session", ev.Session, "product_id", ev.ProductID,
			"qty", ev.Quantity, "cleared", ev.Cleared, "lines", len(ev.Items))
	})

	if cfg.Rabbit.URL != "" {
		producer, closeMQ, err := cartPublisher(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, closeMQ)
		carts.OnChange(producer.Listener())
		logger.Info("publishing cart events", "exchange", cfg.Rabbit.Exchange)
	}

	money := usecase.NewMoney(cfg.Store.Currency)
	front := usecase.Storefront{
		Catalog: catalog,
		Builder: usecase.MessageBuilder{
			Shop:   cfg.Store.Name,
			Money:  money,
			Policy: usecase.Policy{Threshold: cfg.Store.DeliveryThreshold},
		},
		Handoff: usecase.Handoff{
			ChatContact:  cfg.Store.ChatContact,
			EmailTo:      cfg.Store.EmailTo,
			EmailSubject: cfg.Store.EmailSubject,
		},
	}
	checkouts := usecase.NewCheckouts(carts, front, metrics)

	router := api.NewRouter(
		api.NewCartHandler(carts, front),
		api.NewCheckoutHandler(checkouts),
		api.NewCatalogHandler(front),
		middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		logging.New("http"),
	)

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{Router: router, Server: srv}, cleanup, nil
}

func catalogSource(ctx context.Context, cfg configs.Config) (usecase.CatalogSource, func(), error) {
	if cfg.Catalog.Source != configs.CatalogSourceMySQL {
		return repo.NewFileCatalogRepo(cfg.Catalog.Path), func() {}, nil
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	if cfg.MySQL.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	return repo.NewMySQLCatalogRepo(db), func() { _ = db.Close() }, nil
}

func cartRepo(ctx context.Context, cfg configs.Config, logger *slog.Logger) (usecase.CartStateRepo, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("redis.addr empty, carts are kept in memory only")
		return cache.NewMemoryCartRepo(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return cache.NewRedisCartRepo(rdb, cfg.Cart.KeyPrefix, cfg.Cart.TTL), func() { _ = rdb.Close() }, nil
}

func cartPublisher(cfg configs.Config) (*queue.RabbitProducer, func(), error) {
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey, logging.New("queue"))
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return p, func() { _ = ch.Close(); _ = conn.Close() }, nil
}
