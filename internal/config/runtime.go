package config

import (
	"os"
	"strconv"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/rule"
)

type Runtime struct {
	HTTPAddr         string
	CacheMaxItems    int
	MaxSteps         int
	ObsBuffer        int
	K                int
	IncompleteWeight float64
	HelperRule       string
	Workers          int
	LogLevel         string
	LogFormat        string
}

func Load() Runtime {
	return Runtime{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		CacheMaxItems:    getenvInt("SCORING_CACHE_MAX_ITEMS", 1024, 1),
		MaxSteps:         getenvInt("SCORING_MAX_STEPS", exercise.DefaultMaxSteps, 1),
		ObsBuffer:        getenvInt("SCORING_OBS_BUFFER", 4096, 1),
		K:                getenvInt("SCORING_K", exercise.DefaultIncorrectThreshold, 1),
		IncompleteWeight: getenvFloat("SCORING_INCOMPLETE_WEIGHT", exercise.DefaultIncompleteWeight, 0, 1),
		HelperRule:       getenv("SCORING_HELPER_RULE", rule.Default),
		Workers:          getenvInt("SCORING_WORKERS", 4, 1),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
	}
}

// CompilerOptions builds the compiler options for the configured helper rule.
func (r Runtime) CompilerOptions() ([]exercise.CompilerOption, error) {
	if r.HelperRule == "" || r.HelperRule == rule.Default {
		return nil, nil
	}
	c, err := exercise.NewRuleClassifier(r.HelperRule)
	if err != nil {
		return nil, err
	}
	return []exercise.CompilerOption{exercise.WithClassifier(c)}, nil
}

// EngineOptions builds the engine options for the configured limits.
func (r Runtime) EngineOptions() []exercise.EngineOption {
	return []exercise.EngineOption{
		exercise.WithIncorrectThreshold(r.K),
		exercise.WithIncompleteWeight(r.IncompleteWeight),
		exercise.WithMaxSteps(r.MaxSteps),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback, min, max float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return fallback
	}
	return v
}
