package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/awmpietro/golang-exercise-scoring/internal/transport/scoredto"
)

const (
	endpointScore = "score"
	endpointGraph = "graph"
)

type runConfig struct {
	baseURL    string
	rps        int
	duration   time.Duration
	workers    int
	graphEvery int
}

type job struct {
	scenario *scenario
	endpoint string
}

// sample is the outcome of one request. mismatch marks a response that
// differs from the locally computed one.
type sample struct {
	endpoint string
	scenario string
	latency  time.Duration
	status   int
	err      error
	mismatch bool
	score    float64
	maxScore float64
}

// run paces jobs at cfg.rps for cfg.duration, cycling through scenarios.
// Every graphEvery-th job posts the scenario's definition to /graph.
func run(ctx context.Context, client *http.Client, cfg runConfig, scenarios []scenario) []sample {
	jobs := make(chan job, cfg.workers)
	results := make(chan sample, cfg.workers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.workers; i++ {
		g.Go(func() error {
			for j := range jobs {
				results <- do(ctx, client, cfg.baseURL, j)
			}
			return nil
		})
	}

	go func() {
		defer close(jobs)
		ticker := time.NewTicker(time.Second / time.Duration(cfg.rps))
		defer ticker.Stop()
		deadline := time.Now().Add(cfg.duration)
		for seq := 0; ; seq++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if now.After(deadline) {
					return
				}
				endpoint := endpointScore
				if cfg.graphEvery > 0 && seq%cfg.graphEvery == cfg.graphEvery-1 {
					endpoint = endpointGraph
				}
				jobs <- job{scenario: &scenarios[seq%len(scenarios)], endpoint: endpoint}
			}
		}
	}()

	go func() {
		_ = g.Wait()
		close(results)
	}()

	out := make([]sample, 0, cfg.rps*int(math.Ceil(cfg.duration.Seconds()))+1)
	for s := range results {
		out = append(out, s)
	}
	return out
}

func do(ctx context.Context, client *http.Client, baseURL string, j job) sample {
	s := sample{endpoint: j.endpoint, scenario: j.scenario.name}
	url := strings.TrimRight(baseURL, "/") + "/" + j.endpoint

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(j.scenario.body))
	if err != nil {
		s.err = err
		return s
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		s.latency = time.Since(start)
		s.err = err
		return s
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	s.latency = time.Since(start)
	s.status = resp.StatusCode
	if err != nil {
		s.err = err
		return s
	}

	want := j.scenario.wantStatus
	if j.endpoint == endpointGraph {
		want = j.scenario.graphStatus
	}
	s.mismatch = resp.StatusCode != want
	if s.mismatch || resp.StatusCode != http.StatusOK {
		return s
	}

	switch j.endpoint {
	case endpointGraph:
		s.mismatch = !strings.Contains(string(body), "digraph")
	default:
		var out scoredto.ScoreResponse
		if err := json.Unmarshal(body, &out); err != nil {
			s.err = err
			return s
		}
		s.score, s.maxScore = out.Score, out.MaxScore
		s.mismatch = math.Abs(out.Score-j.scenario.wantScore) > 1e-9 || out.MaxScore != j.scenario.wantMax
	}
	return s
}
