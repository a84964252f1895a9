package main

import (
	"context"
	"log"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktrack/api/handler"
	"github.com/fastygo/tasktrack/internal/config"
	"github.com/fastygo/tasktrack/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktrack/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktrack/internal/infrastructure/redis"
	"github.com/fastygo/tasktrack/internal/middleware"
	"github.com/fastygo/tasktrack/internal/router"
	"github.com/fastygo/tasktrack/internal/security/fieldcipher"
	"github.com/fastygo/tasktrack/internal/security/keyring"
	"github.com/fastygo/tasktrack/internal/security/password"
	"github.com/fastygo/tasktrack/internal/security/token"
	"github.com/fastygo/tasktrack/internal/services"
	"github.com/fastygo/tasktrack/internal/services/lifecycle"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	"github.com/fastygo/tasktrack/pkg/logger"
	"github.com/fastygo/tasktrack/repository"
	boltRepo "github.com/fastygo/tasktrack/repository/bolt"
	"github.com/fastygo/tasktrack/repository/postgres"
	redisRepo "github.com/fastygo/tasktrack/repository/redis"
	authUC "github.com/fastygo/tasktrack/usecase/auth"
	taskUC "github.com/fastygo/tasktrack/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	keys, err := keyring.New(cfg.JWT.Secret, cfg.Security.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("key material unavailable", zap.Error(err))
	}
	issuer := token.NewIssuer(keys, cfg.JWT.Issuer, cfg.JWT.TTL)
	cipher, err := fieldcipher.New(keys)
	if err != nil {
		zapLogger.Fatal("field cipher init failed", zap.Error(err))
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.RegisterFunc("postgres", func() { pgInfra.Close(pool, zapLogger) })

	// redis is only mandatory when it backs the denylist
	redisRequired := cfg.Revocation.Backend == config.RevocationRedis
	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	switch {
	case err != nil && redisRequired:
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	case err != nil:
		zapLogger.Warn("redis unavailable", zap.Error(err))
		redisClient = nil
	default:
		manager.RegisterFunc("redis", func() { redisInfra.Close(redisClient, zapLogger) })
	}

	var redisProbe goRedis.UniversalClient
	if redisClient != nil {
		redisProbe = redisClient
	}
	checks := []monitor.Check{
		monitor.PostgresCheck(pool),
		monitor.RedisCheck(redisProbe, redisRequired),
	}

	var revocations repository.RevocationRepository
	switch cfg.Revocation.Backend {
	case config.RevocationRedis:
		revocations = redisRepo.NewRevocationRepository(redisClient)
	case config.RevocationBolt:
		store, err := boltRepo.Open(cfg.Revocation.BoltPath, "")
		if err != nil {
			zapLogger.Fatal("failed to open revocation store", zap.Error(err))
		}
		manager.RegisterCloser("revocation_store", store)
		revocations = store
		checks = append(checks, monitor.Check{
			Name:     "revocations",
			Required: true,
			Probe: func(context.Context) error {
				_, err := store.Size()
				return err
			},
		})

		sweeper := services.NewRevocationSweeper(store, zapLogger, services.SweeperConfig{
			Interval: cfg.Revocation.SweepInterval,
		})
		sweeper.Start()
		manager.Register("revocation_sweeper", sweeper.Stop)
	default:
		zapLogger.Warn("token revocation disabled; logout only clears the cookie")
	}

	mon := monitor.New(checks, 0, zapLogger)
	mon.Start()
	manager.RegisterFunc("monitor", mon.Stop)

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	authUseCase := authUC.New(
		userRepo,
		password.NewHasher(cfg.Security.BcryptCost),
		issuer,
		cipher,
		revocations,
		cfg.Security.PIIFields,
		zapLogger,
	)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, apiHandler.NewCookiePolicy(cfg.IsProduction()), cipher, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	guard := middleware.NewGuard(issuer, userRepo, revocations, zapLogger)
	r := router.New(handlers, middleware.Authenticate(guard, ctxAdapter, zapLogger))

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.Recover(zapLogger),
			middleware.AccessLog(zapLogger),
			middleware.SecurityHeaders(cfg.IsProduction()),
			middleware.CORS(cfg.HTTP.ClientURL),
		),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.BodyLimit,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("env", cfg.Environment),
			zap.String("revocation_backend", cfg.Revocation.Backend),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
