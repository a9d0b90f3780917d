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

	"sales-order-service/internal/auth"
	"sales-order-service/internal/config"
	httpctl "sales-order-service/internal/controllers/http"
	"sales-order-service/internal/domain"
	"sales-order-service/internal/infra/kv"
	"sales-order-service/internal/infra/mysql"
	"sales-order-service/internal/infra/rabbitmq"
	"sales-order-service/internal/infra/redis"
	"sales-order-service/internal/infra/remote"
	"sales-order-service/internal/logger"
	"sales-order-service/internal/repository"
	"sales-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	port := pflag.String("port", "", "listen port (overrides PORT)")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	if pflag.CommandLine.Changed("port") {
		cfg.Server.Port = *port
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("store: open", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	local = kv.Prefixed(local, cfg.Store.KeyPrefix)

	var rc remote.ClientInterface
	if cfg.Remote.BaseURL != "" {
		rc = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout)
		slog.Info("remote persistence enabled", "baseURL", cfg.Remote.BaseURL)
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.Nop{}
	if cfg.Broker.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			slog.Error("failed to init publisher", "err", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	adapter := repository.NewAdapter(local, rc)
	products := repository.NewCollection[domain.Product](adapter, repository.Products)
	orders := repository.NewCollection[domain.Order](adapter, repository.Orders)
	customers := repository.NewCollection[domain.Customer](adapter, repository.Customers)
	salespersons := repository.NewCollection[domain.Salesperson](adapter, repository.Salespersons)

	spSvc := services.NewSalespersonService(salespersons)
	authSvc := services.NewAuthService(rc, spSvc, repository.NewSessions(local), auth.NewIssuer(cfg.Auth.JWTSecret), services.AuthOptions{
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
		TokenTTL:      cfg.Auth.TokenTTL,
	})
	handler := httpctl.NewHandler(
		authSvc,
		services.NewProductService(products, publisher),
		services.NewOrderService(orders, customers, products, publisher, cfg.Auth.DeletePassword),
		services.NewCustomerService(customers),
		spSvc,
	)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), httpctl.RequestLogger(), httpctl.CORSMiddleware(cfg.Server.CORSOrigin))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting sales order service", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server run", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (kv.Store, func(), error) {
	switch cfg.Driver {
	case "redis":
		client, err := redis.NewClient(ctx, redis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStore(client), func() { client.Close() }, nil
	case "mysql":
		db, err := mysql.Open(mysql.Options{
			User:     cfg.MySQL.User,
			Password: cfg.MySQL.Password,
			Host:     cfg.MySQL.Host,
			Port:     cfg.MySQL.Port,
			Database: cfg.MySQL.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewStore(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}
