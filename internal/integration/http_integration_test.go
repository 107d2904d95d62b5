package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/httptransport"
)

var scenarioSteps = []map[string]any{
	{"exercise_type_id": "1497", "step_id": "1", "is_first_step": true, "possible_answer_id": "A1", "possible_answer_next_step_id": "2", "answer_interpretation": "correct", "score": 10},
	{"exercise_type_id": "1497", "step_id": "1", "is_first_step": true, "possible_answer_id": "A2", "possible_answer_next_step_id": "1", "answer_interpretation": "incorrect", "score": 10},
	{"exercise_type_id": "1497", "step_id": "2", "score": 0},
}

func newScoreServer() *httptest.Server {
	svc := app.NewService(exercise.NewCompiler(), exercise.NewEngine(), cache.NewInMemory(1024))
	return httptest.NewServer(httptransport.NewHandler(svc).Router())
}

func answerIDs(ids ...string) []map[string]any {
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"possible_answer_id": id})
	}
	return out
}

func repeat(id string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = id
	}
	return out
}

func postScore(t *testing.T, srv *httptest.Server, payload map[string]any) (int, map[string]any, string) {
	t.Helper()
	status, out, body := postScoreNoFatal(srv, payload)
	if status == 0 {
		t.Fatalf("request failed: %s", body)
	}
	return status, out, body
}

func postScoreNoFatal(srv *httptest.Server, payload map[string]any) (int, map[string]any, string) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err.Error()
	}
	resp, err := http.Post(srv.URL+"/score", "application/json", bytes.NewBuffer(b))
	if err != nil {
		return 0, nil, err.Error()
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return resp.StatusCode, out, string(body)
}

func TestHTTPScore_RepeatedWrongThenRight(t *testing.T) {
	srv := newScoreServer()
	defer srv.Close()

	status, out, body := postScore(t, srv, map[string]any{
		"steps":    scenarioSteps,
		"answers":  answerIDs(append(repeat("A2", 6), "A1")...),
		"finished": true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if out["score"] != 1.4 || out["max_score"] != 10.0 {
		t.Fatalf("expected score 1.4 of 10, got %v", out)
	}
}

func TestHTTPScore_UnfinishedPenalty(t *testing.T) {
	srv := newScoreServer()
	defer srv.Close()

	status, out, body := postScore(t, srv, map[string]any{
		"steps":    scenarioSteps,
		"answers":  answerIDs("A1"),
		"finished": false,
		"options":  map[string]any{"incomplete_weight": 0.25},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if out["score"] != 7.5 {
		t.Fatalf("expected 7.5, got %v", out["score"])
	}
}

func TestHTTPScore_InputErrors(t *testing.T) {
	srv := newScoreServer()
	defer srv.Close()

	cases := []struct {
		name    string
		payload map[string]any
		status  int
		details string
	}{
		{"missing steps", map[string]any{"answers": answerIDs("A1")}, http.StatusBadRequest, "steps are required"},
		{"bad k", map[string]any{"steps": scenarioSteps, "options": map[string]any{"k": 0}}, http.StatusBadRequest, "k must be"},
		{"no first step", map[string]any{"steps": []map[string]any{{"exercise_type_id": "9", "step_id": "1"}}}, http.StatusUnprocessableEntity, "first step"},
		{"unknown destination", map[string]any{"steps": []map[string]any{
			{"exercise_type_id": "9", "step_id": "1", "is_first_step": true, "possible_answer_id": "X", "possible_answer_next_step_id": "42", "answer_interpretation": "correct", "score": 1},
		}}, http.StatusUnprocessableEntity, "42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, out, body := postScore(t, srv, tc.payload)
			if status != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, status, body)
			}
			details, _ := out["details"].(string)
			if !strings.Contains(details, tc.details) {
				t.Fatalf("expected details to mention %q, got %q", tc.details, details)
			}
		})
	}
}

func TestHTTPScore_DebugTrace(t *testing.T) {
	srv := newScoreServer()
	defer srv.Close()

	status, out, body := postScore(t, srv, map[string]any{
		"steps":    scenarioSteps,
		"answers":  answerIDs("A2", "ZZ", "A1"),
		"finished": true,
		"debug":    true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	trace, ok := out["trace"].(map[string]any)
	if !ok {
		t.Fatalf("expected trace, got %s", body)
	}
	if trace["terminated"] != exercise.TerminatedEnd {
		t.Fatalf("expected terminated end, got %v", trace["terminated"])
	}
	ignored, _ := trace["ignored"].([]any)
	if len(ignored) != 1 || out["ignored_answers"] != 1.0 {
		t.Fatalf("expected one ignored answer, got %v / %v", ignored, out["ignored_answers"])
	}
}

func TestHTTPScore_ConcurrentRequests(t *testing.T) {
	srv := newScoreServer()
	defer srv.Close()

	const n = 80
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := []string{"A1"}
			want := 10.0
			if i%2 == 1 {
				ids = []string{"A2", "A1"}
				want = 5
			}
			status, out, body := postScoreNoFatal(srv, map[string]any{
				"steps":    scenarioSteps,
				"answers":  answerIDs(ids...),
				"finished": true,
			})
			if status != http.StatusOK {
				errs <- &integrationErr{msg: "status not ok", body: body}
				return
			}
			if out["score"] != want {
				errs <- &integrationErr{msg: fmt.Sprintf("expected %v", want), body: body}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
}

type integrationErr struct {
	msg  string
	body string
}

func (e *integrationErr) Error() string {
	return e.msg + ": " + e.body
}
