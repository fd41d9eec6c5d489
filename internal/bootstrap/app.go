package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	appsvc "tienda-api/internal/app"
	"tienda-api/internal/config"
	"tienda-api/internal/logging"
	"tienda-api/internal/model"
	mysqlClient "tienda-api/internal/platform/mysql"
	rabbitmqClient "tienda-api/internal/platform/rabbitmq"
	redisClient "tienda-api/internal/platform/redis"
	sqliteClient "tienda-api/internal/platform/sqlite"
	"tienda-api/internal/repository"
	"tienda-api/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB
	// Redis and MQConn stay nil when the broker could not be reached at
	// startup; the features built on them are switched off.
	Redis        *redis.Client
	MQConn       *amqp.Connection
	OrderService *appsvc.OrderService
	OrderWorker  *worker.OrderEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		StartedAt: time.Now(),
	}

	if redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.WithError(err).Warn("redis unavailable, chat history cache disabled")
	} else {
		a.Redis = redisCli
	}

	if mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, order events disabled")
	} else {
		a.MQConn = mqConn
	}

	var publisher appsvc.OrderEventPublisher
	if a.MQConn != nil {
		publisher = rabbitmqClient.NewOrderPublisher(a.MQConn, cfg.RabbitMQ.OrderPlacedQueue)
	}
	a.OrderService = appsvc.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewAddressRepository(db),
		publisher,
		appsvc.ShippingPolicy{
			Fee:                   cfg.Shop.ShippingFee,
			FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
		},
		logger.WithField("component", "orders"),
	)

	if a.MQConn != nil {
		a.OrderWorker = worker.NewOrderEventWorker(a.MQConn, a.OrderService, cfg.RabbitMQ.OrderPlacedQueue, logger)
		if err := a.OrderWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start order worker failed: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"db_driver": cfg.Database.Driver,
		"redis":     a.Redis != nil,
		"rabbitmq":  a.MQConn != nil,
	}).Info("dependencies ready")
	return a, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return sqliteClient.New(ctx, cfg.SQLite.Path)
	case "mysql", "":
		return mysqlClient.New(ctx, cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.OrderWorker != nil {
		a.OrderWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
