package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"
)

type endpointStats struct {
	requests   int
	ok         int
	non2xx     int
	errs       int
	mismatches int
	avg        time.Duration
	p50        time.Duration
	p90        time.Duration
	p99        time.Duration
}

type scenarioStats struct {
	requests  int
	scored    int
	scoreSum  float64
	maxScore  float64
	wantScore float64
}

type report struct {
	duration  time.Duration
	endpoints map[string]endpointStats
	scenarios map[string]*scenarioStats
	order     []string
}

func summarize(samples []sample, scenarios []scenario, duration time.Duration) report {
	r := report{
		duration:  duration,
		endpoints: map[string]endpointStats{},
		scenarios: map[string]*scenarioStats{},
	}
	for _, sc := range scenarios {
		if _, ok := r.scenarios[sc.name]; ok {
			continue
		}
		r.order = append(r.order, sc.name)
		r.scenarios[sc.name] = &scenarioStats{wantScore: sc.wantScore, maxScore: sc.wantMax}
	}

	latencies := map[string][]time.Duration{}
	for _, s := range samples {
		st := r.endpoints[s.endpoint]
		st.requests++
		latencies[s.endpoint] = append(latencies[s.endpoint], s.latency)
		switch {
		case s.err != nil:
			st.errs++
		case s.status >= 200 && s.status < 300:
			st.ok++
		default:
			st.non2xx++
		}
		if s.mismatch {
			st.mismatches++
		}
		r.endpoints[s.endpoint] = st

		if s.endpoint == endpointScore {
			sc := r.scenarios[s.scenario]
			if sc == nil {
				continue
			}
			sc.requests++
			if s.err == nil && s.status == 200 {
				sc.scored++
				sc.scoreSum += s.score
			}
		}
	}

	for name, lat := range latencies {
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
		st := r.endpoints[name]
		st.avg = average(lat)
		st.p50 = percentile(lat, 50)
		st.p90 = percentile(lat, 90)
		st.p99 = percentile(lat, 99)
		r.endpoints[name] = st
	}
	return r
}

func (r report) total() (requests, failures int) {
	for _, st := range r.endpoints {
		requests += st.requests
		failures += st.errs + st.non2xx + st.mismatches
	}
	return requests, failures
}

// p90 is the worst P90 across endpoints.
func (r report) p90() time.Duration {
	var worst time.Duration
	for _, st := range r.endpoints {
		if st.p90 > worst {
			worst = st.p90
		}
	}
	return worst
}

func (r report) achievedRPS() float64 {
	n, _ := r.total()
	return float64(n) / r.duration.Seconds()
}

func (r report) write(w io.Writer) {
	fmt.Fprintf(w, "Load test finished in %s (%.2f req/s)\n\n", r.duration, r.achievedRPS())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tREQUESTS\t2XX\tNON_2XX\tERRORS\tMISMATCHES\tAVG_MS\tP50_MS\tP90_MS\tP99_MS")
	for _, name := range []string{endpointScore, endpointGraph} {
		st, ok := r.endpoints[name]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\n",
			name, st.requests, st.ok, st.non2xx, st.errs, st.mismatches, ms(st.avg), ms(st.p50), ms(st.p90), ms(st.p99))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tREQUESTS\tEXPECTED\tMEAN_SCORE\tMAX_SCORE")
	for _, name := range r.order {
		sc := r.scenarios[name]
		mean := 0.0
		if sc.scored > 0 {
			mean = sc.scoreSum / float64(sc.scored)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.2f\t%.1f\n", name, sc.requests, sc.wantScore, mean, sc.maxScore)
	}
	_ = tw.Flush()
}

func percentile(items []time.Duration, p int) time.Duration {
	if len(items) == 0 {
		return 0
	}
	return items[(len(items)-1)*p/100]
}

func average(items []time.Duration) time.Duration {
	if len(items) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range items {
		total += d
	}
	return total / time.Duration(len(items))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
