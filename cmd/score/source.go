package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
	"github.com/awmpietro/golang-exercise-scoring/internal/source/csvsource"
	"github.com/awmpietro/golang-exercise-scoring/internal/source/sqlitesource"
	"github.com/awmpietro/golang-exercise-scoring/internal/source/yamlsource"
)

// openSource returns the configured data source and a close func.
func openSource(ctx context.Context, v *viper.Viper) (app.Source, func() error, error) {
	noop := func() error { return nil }

	switch kind := v.GetString("source"); kind {
	case "csv":
		if v.GetString("steps") == "" {
			return nil, nil, fmt.Errorf("--steps is required for the csv source")
		}
		return csvsource.New(v.GetString("steps"), v.GetString("answers")), noop, nil
	case "sqlite":
		if v.GetString("db") == "" {
			return nil, nil, fmt.Errorf("--db is required for the sqlite source")
		}
		store, err := sqlitesource.Open(ctx, v.GetString("db"))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "yaml":
		if v.GetString("file") == "" {
			return nil, nil, fmt.Errorf("--file is required for the yaml source")
		}
		return yamlsource.New(v.GetString("file")), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (want csv, sqlite or yaml)", kind)
	}
}

func newService(v *viper.Viper, engineOpts ...exercise.EngineOption) (*app.Service, error) {
	var compilerOpts []exercise.CompilerOption
	if rule := v.GetString("helper-rule"); rule != "" {
		c, err := exercise.NewRuleClassifier(rule)
		if err != nil {
			return nil, err
		}
		compilerOpts = append(compilerOpts, exercise.WithClassifier(c))
	}

	return app.NewService(
		exercise.NewCompiler(compilerOpts...),
		exercise.NewEngine(engineOpts...),
		cache.NewInMemory(256),
	), nil
}
