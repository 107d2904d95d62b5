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

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/config"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/httptransport"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	compilerOpts, err := cfg.CompilerOptions()
	if err != nil {
		logger.Error("invalid helper rule", "rule", cfg.HelperRule, "error", err)
		os.Exit(1)
	}
	compiler := exercise.NewCompiler(compilerOpts...)

	observer := exercise.NewAsyncTransitionObserver(exercise.NewTransitionLogger(logger), cfg.ObsBuffer)
	defer observer.Close()
	engine := exercise.NewEngine(append(cfg.EngineOptions(), exercise.WithTransitionObserver(observer))...)
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(compiler, engine, c)
	h := httptransport.NewHandler(svc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "k", cfg.K, "incomplete_weight", cfg.IncompleteWeight, "helper_rule", cfg.HelperRule)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped", "dropped_transition_events", observer.Dropped())
}
