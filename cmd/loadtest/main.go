// Command loadtest replays scoring attempts against a running server at a
// fixed rate, checks every score against the in-process engine and reports
// latency per endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
)

func main() {
	baseURL := flag.String("addr", "http://localhost:8080", "scoring server base URL")
	payloadPath := flag.String("payload", "", "JSON score request to replay instead of the built-in attempts")
	graphEvery := flag.Int("graph-every", 10, "send every Nth request to POST /graph (0 disables)")
	p90Target := flag.Duration("p90", 30*time.Millisecond, "P90 latency target")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 || *graphEvery < 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0; graph-every must be >= 0")
		os.Exit(2)
	}

	scenarios, err := loadScenarios(*payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenarios: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := runConfig{baseURL: *baseURL, rps: *rps, duration: *duration, workers: *workers, graphEvery: *graphEvery}
	started := time.Now()
	samples := run(ctx, &http.Client{Timeout: *timeout}, cfg, scenarios)
	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}

	rep := summarize(samples, scenarios, time.Since(started))
	rep.write(os.Stdout)

	_, failures := rep.total()
	minRPS := float64(*rps) * 0.98
	if rep.achievedRPS() >= minRPS && rep.p90() < *p90Target && failures == 0 {
		fmt.Printf("PASS: meets %d RPS, P90 < %s and every score matches\n", *rps, p90Target.String())
		return
	}
	fmt.Println("FAIL: missed the target, or a request failed or returned an unexpected score")
	os.Exit(1)
}

func loadScenarios(payloadPath string) ([]scenario, error) {
	var (
		scenarios []scenario
		err       error
	)
	if payloadPath != "" {
		scenarios, err = fileScenario(payloadPath)
	} else {
		scenarios, err = builtinScenarios()
	}
	if err != nil {
		return nil, err
	}

	local := app.NewService(exercise.NewCompiler(), exercise.NewEngine(), cache.NewInMemory(len(scenarios)))
	if err := expect(local, scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}
