package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/tasktracker/task-api/internal/api"
	"github.com/tasktracker/task-api/internal/core/service"
	mongodb "github.com/tasktracker/task-api/internal/infrastructure/db/mongo"
	redisstore "github.com/tasktracker/task-api/internal/infrastructure/db/redis"
	"github.com/tasktracker/task-api/internal/infrastructure/http/handlers"
	"github.com/tasktracker/task-api/internal/infrastructure/password"
	"github.com/tasktracker/task-api/internal/infrastructure/token"
	"github.com/tasktracker/task-api/internal/pkg/config"
	"github.com/tasktracker/task-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongodb.NewUserRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, tasks); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	// Idempotency keys are best effort; the API runs without Redis.
	var idem service.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Warn().Err(err).Msg("redis close")
				}
			}()
			idem = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
			checks["redis"] = handlers.RedisCheck(rdb)
		}
	}

	authService := service.NewAuthService(users, password.NewBcrypt(bcrypt.DefaultCost), logger.Component("auth"))
	taskService := service.NewTaskService(tasks, users, idem, logger.Component("tasks"))
	userService := service.NewUserService(users, tasks, logger.Component("users"))

	if cfg.HasAdmin() {
		if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Dependencies{
		Logger:        log,
		Tokens:        token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		AuthService:   authService,
		TaskService:   taskService,
		UserService:   userService,
		HealthChecks:  checks,
		AuthRateLimit: cfg.Auth.RateLimit,
		Development:   cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
