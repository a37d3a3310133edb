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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinttrack/api"
	"tinttrack/internal/config"
	"tinttrack/internal/cpf"
	"tinttrack/internal/database"
	"tinttrack/internal/identity"
	"tinttrack/internal/logger"
	"tinttrack/internal/sales"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error trying to start server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	db, err := database.Open(cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	users := identity.NewGormUserStore(db)
	customers := sales.NewGormStorage(db)

	// PostgreSQL schemas are owned by cmd/migrate unless auto-migration is on.
	if cfg.Database.Driver == "sqlite" || cfg.Database.AutoMigrate {
		ctx := context.Background()
		if err := users.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate users: %w", err)
		}
		if err := customers.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate customers: %w", err)
		}
	}

	var revoked identity.RevocationList = identity.NewMemoryRevocationList()
	if cfg.Redis.Enabled {
		redisList, err := identity.NewRedisRevocationList(identity.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisList.Close() }()
		revoked = redisList
	}

	tokens := identity.NewTokenService(identity.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	var checker cpf.Checker = cpf.FormatChecker{}
	if cfg.CPFCheck.Endpoint != "" {
		remote := cpf.NewRemoteChecker(cpf.RemoteConfig{
			Endpoint: cfg.CPFCheck.Endpoint,
			APIKey:   cfg.CPFCheck.APIKey,
			Timeout:  cfg.CPFCheck.Timeout,
		}, log.Named("cpf"))
		defer func() { _ = remote.Close() }()
		checker = remote
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))

	if err := api.InitRoutes(r, api.Services{
		Sales:    sales.NewService(customers, log.Named("sales")),
		Identity: identity.NewService(users, tokens, revoked, log.Named("identity")),
		CPF:      checker,
		Logger:   log,
	}); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
