package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Siddarth2230/branchmoji/internal/config"
	"github.com/Siddarth2230/branchmoji/internal/handler"
	"github.com/Siddarth2230/branchmoji/internal/middleware"
	"github.com/Siddarth2230/branchmoji/internal/repository"
	"github.com/Siddarth2230/branchmoji/internal/service"
	"github.com/Siddarth2230/branchmoji/pkg/alphabet"
	"github.com/Siddarth2230/branchmoji/pkg/cache"
	"github.com/Siddarth2230/branchmoji/pkg/idgen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logAtomic := zap.NewAtomicLevel()
	logCfg := zap.NewProductionConfig()
	logCfg.Level = logAtomic
	logCfg.Encoding = "console"
	logCfg.DisableStacktrace = true
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var ll zapcore.Level
	if err := ll.Set(cfg.LogLevel); err != nil {
		logger.Fatal("log level", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	logAtomic.SetLevel(ll)

	maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := config.BuildAlphabet(cfg.Alphabet, cfg.Shuffle, alphabet.RandomPermuter())
	if err != nil {
		logger.Fatal("alphabet", zap.Error(err))
	}
	codec := idgen.NewCodec(a)
	logger.Info("alphabet ready", zap.Int("base", codec.Base()), zap.Bool("shuffled", cfg.Shuffle))

	// Connect to database
	dialect, err := repository.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		logger.Fatal("database driver", zap.Error(err))
	}
	db, err := repository.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewIdentifierRepository(db, dialect, logger)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis snapshot cache is optional; without it every allocation reads
	// the namespace from the database.
	var snapshots service.SnapshotCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		})
		defer func() {
			_ = redisClient.Close()
		}()

		rc := cache.NewRedisCache(redisClient, "branchmoji:ns:", cfg.SnapshotTTL)
		if err := rc.Ping(ctx); err != nil {
			logger.Fatal("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		snapshots = rc
	}

	svc := service.NewIdentifierService(repo, codec, snapshots, cfg.DecodeCacheSize, logger)
	handlers := handler.NewIdentifierHandler(svc, logger)

	// Setup routes
	r := mux.NewRouter()
	handlers.Register(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	r.Use(middleware.MetricsMiddleware, middleware.RequestLogger(logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
