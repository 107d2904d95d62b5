package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/scoredto"
)

// scenario is one attempt replayed against the server, together with the
// answer the local engine gives for it.
type scenario struct {
	name        string
	body        []byte
	wantStatus  int
	wantScore   float64
	wantMax     float64
	graphStatus int
}

func exerciseSteps() []exercise.Step {
	f := exercise.Float
	return []exercise.Step{
		{ExerciseTypeID: "1497", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A1", PossibleAnswerNextStepID: "2", AnswerInterpretation: exercise.Correct, Score: f(10)},
		{ExerciseTypeID: "1497", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A2", PossibleAnswerNextStepID: "3", AnswerInterpretation: exercise.Incorrect, Score: f(10)},
		{ExerciseTypeID: "1497", StepID: "3", StepNextStepID: "1"},
		{ExerciseTypeID: "1497", StepID: "2", PossibleAnswerID: "B1", PossibleAnswerNextStepID: "4", AnswerInterpretation: exercise.Correct, Score: f(5)},
		{ExerciseTypeID: "1497", StepID: "2", PossibleAnswerID: "B2", PossibleAnswerNextStepID: "2", AnswerInterpretation: exercise.Incorrect, Score: f(5)},
		{ExerciseTypeID: "1497", StepID: "4", Score: f(0)},
	}
}

// builtinScenarios mixes clean, hinted and abandoned attempts on one
// definition so the server sees both finished and unfinished replays.
func builtinScenarios() ([]scenario, error) {
	steps := exerciseSteps()
	half := 0.5

	attempts := []struct {
		name     string
		answers  []string
		finished bool
		opts     app.ScoreOptions
	}{
		{name: "clean", answers: []string{"A1", "B1"}, finished: true},
		{name: "hinted", answers: []string{"A2", "A1", "B2", "B2", "B1"}, finished: true},
		{name: "abandoned", answers: []string{"A2", "A1"}},
		{name: "abandoned-half-weight", answers: []string{"A1", "B2"}, opts: app.ScoreOptions{IncompleteWeight: &half}},
	}

	start := time.Date(2024, 5, 27, 7, 20, 0, 0, time.UTC)
	out := make([]scenario, 0, len(attempts))
	for _, a := range attempts {
		answers := make([]exercise.Answer, 0, len(a.answers))
		for i, id := range a.answers {
			answers = append(answers, exercise.Answer{
				ExerciseTypeID:   "1497",
				PossibleAnswerID: id,
				SubmittedAt:      start.Add(time.Duration(i) * time.Second),
			})
		}
		body, err := json.Marshal(scoredto.ScoreRequest{Steps: steps, Answers: answers, Finished: a.finished, Options: a.opts})
		if err != nil {
			return nil, err
		}
		out = append(out, scenario{name: a.name, body: body})
	}
	return out, nil
}

func fileScenario(path string) ([]scenario, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []scenario{{name: name, body: body}}, nil
}

// expect fills in what a correct server answers for each scenario by
// dispatching the same bodies to an in-process service.
func expect(svc *app.Service, scenarios []scenario) error {
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios")
	}
	for i := range scenarios {
		sc := &scenarios[i]
		status, out := scoredto.Dispatch(svc, sc.body)
		sc.wantStatus = status
		if resp, ok := out.(scoredto.ScoreResponse); ok {
			sc.wantScore = resp.Score
			sc.wantMax = resp.MaxScore
		}

		in, err := scoredto.Decode(sc.body)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.name, err)
		}
		sc.graphStatus = http.StatusOK
		if _, err := svc.Model(in.Steps); err != nil {
			sc.graphStatus = scoredto.Status(err)
		}
	}
	return nil
}
