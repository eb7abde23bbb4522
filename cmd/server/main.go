package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"game-recommender/api/rest/routes"
	"game-recommender/config"
	"game-recommender/core/evaluator"
	"game-recommender/core/recommender"
	"game-recommender/core/registry"
	"game-recommender/core/repository"
	"game-recommender/core/scheduler"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Job store: Postgres when configured, in-memory otherwise
	var store repository.JobStore
	if cfg.DatabaseURL != "" {
		store, err = repository.NewPostgresJobStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		logger.Info("using postgres job store")
	} else {
		store = repository.NewMemoryJobStore()
		logger.Info("using in-memory job store")
	}
	defer store.Close()

	reg := registry.New(logger)
	trainer := recommender.NewTrainer(
		recommender.FileSource{
			GamesPath:        cfg.GamesCSV,
			InteractionsPath: cfg.InteractionsCSV,
		},
		recommender.TrainerConfig{
			Factors:    cfg.Factors,
			MaxIter:    cfg.MaxIter,
			RandomSeed: cfg.RandomSeed,
			Alpha:      cfg.Alpha,
		},
		logger,
	)
	eval := evaluator.New(cfg.RandomSeed, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := scheduler.NewManager(store, reg, trainer, eval, logger)
	manager.Start(ctx)
	defer manager.Stop()

	r := mux.NewRouter()
	routes.SetupRoutes(r, manager, reg, logger)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
