package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/config"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, "json")
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
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Score)
}
