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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chessgame/internal/adapters"
	"chessgame/internal/bootstrap"
	gameDelivery "chessgame/internal/delivery/game"
	"chessgame/internal/domain/movement"
	errs "chessgame/internal/errors"
	"chessgame/internal/httpresponse"
	ownMiddleware "chessgame/internal/middleware"
	repo "chessgame/internal/repository"
	gameuc "chessgame/internal/usecase/game"
)

type mainDeliveryHandler struct {
	game *gameDelivery.GameHandler
}

// closer is implemented by the database adapters.
type closer interface {
	Close(ctx context.Context) error
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		panic("failed to setup configuration: " + err.Error())
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, adapter, err := initGameStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatalw("failed to initialise storage", "backend", cfg.StorageBackend, "error", err)
	}
	if adapter != nil {
		defer adapter.Close(context.Background())
	}

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(logger, store)
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("graceful shutdown failed", "error", err)
		}
	}()

	logger.Infow("server is running", "port", cfg.ServerPort, "storage", cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("failed to start server", "error", err)
	}
}

func NewLogger(level string) *zap.SugaredLogger {
	zcfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, "ok")
	})
	h.game.Routes(r)
}

// initGameStore picks the repository named by STORAGE_BACKEND. The returned
// closer is nil for backends without a connection.
func initGameStore(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (gameuc.GameStore, closer, error) {
	switch cfg.StorageBackend {
	case "memory":
		return repo.NewMemoryGameRepository(), nil, nil
	case "file":
		store, err := repo.NewFileGameRepository(cfg.SaveDir, log)
		return store, nil, err
	case "redis":
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			return nil, nil, err
		}
		return repo.NewRedisGameRepository(redisAdapter.GetClient(), log, cfg.StorageTimeout), redisAdapter, nil
	case "mongo":
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			return nil, nil, err
		}
		return repo.NewMongoGameRepository(mongoAdapter.Database, log, cfg.StorageTimeout), mongoAdapter, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errs.ErrUnknownStorage, cfg.StorageBackend)
	}
}

func initializeDeliveryHandlers(log *zap.SugaredLogger, store gameuc.GameStore) *mainDeliveryHandler {
	gameUseCase := gameuc.NewGameUseCase(store, movement.NewService())
	gameDeliveryHandler := gameDelivery.NewGameHandler(log, gameUseCase, gameDelivery.NewHub(log))

	return &mainDeliveryHandler{
		game: gameDeliveryHandler,
	}
}
