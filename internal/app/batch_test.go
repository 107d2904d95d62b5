package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

type memSource struct {
	steps   []exercise.Step
	answers []exercise.Answer
	err     error
}

func (m *memSource) Steps(ctx context.Context) ([]exercise.Step, error) { return m.steps, m.err }

func (m *memSource) Answers(ctx context.Context) ([]exercise.Answer, error) { return m.answers, nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func answer(typeID, student, attempt, id string, sec int, finished bool) exercise.Answer {
	return exercise.Answer{
		ExerciseTypeID:   typeID,
		StudentID:        student,
		AttemptID:        attempt,
		PossibleAnswerID: id,
		SubmittedAt:      time.Date(2024, 6, 17, 10, 0, sec, 0, time.UTC),
		ExerciseFinished: finished,
	}
}

func brokenSteps() []exercise.Step {
	return []exercise.Step{
		{ExerciseTypeID: "666", StepID: "1", PossibleAnswerID: "Z", PossibleAnswerNextStepID: "2", AnswerInterpretation: exercise.Correct, Score: f(1)},
		{ExerciseTypeID: "666", StepID: "2"},
	}
}

func TestGroupAttempts_SplitsAndSorts(t *testing.T) {
	attempts := GroupAttempts([]exercise.Answer{
		answer("1497", "s2", "t1", "A1", 5, true),
		answer("1497", "s1", "t2", "A1", 9, true),
		answer("1497", "s1", "t1", "A1", 3, true),
		answer("1497", "s1", "t1", "A2", 1, true),
	})

	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	first := attempts[0]
	if first.StudentID != "s1" || first.AttemptID != "t1" {
		t.Fatalf("unexpected first attempt: %#v", first)
	}
	if first.Answers[0].PossibleAnswerID != "A2" || first.Answers[1].PossibleAnswerID != "A1" {
		t.Fatalf("expected answers sorted by time, got %#v", first.Answers)
	}
}

func TestFilterAnswers(t *testing.T) {
	in := []exercise.Answer{
		answer("1497", "s1", "t1", "A1", 0, true),
		answer("1497", "s2", "t1", "A1", 0, true),
		answer("12", "s1", "t1", "A1", 0, true),
	}

	if got := FilterAnswers(in, Filter{ExerciseTypeID: "1497"}); len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got := FilterAnswers(in, Filter{ExerciseTypeID: "1497", StudentID: "s2"}); len(got) != 1 {
		t.Fatalf("expected 1, got %d", len(got))
	}
	if got := FilterAnswers(in, Filter{}); len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
}

func TestBatch_Run_ScoresEachAttemptIndependently(t *testing.T) {
	b := NewBatch(realService(), WithWorkers(2), WithLogger(quietLogger()))

	var ans []exercise.Answer
	ans = append(ans, answer("1497", "s1", "t1", "A1", 0, true))
	for i := 0; i < 6; i++ {
		ans = append(ans, answer("1497", "s1", "t2", "A2", i, true))
	}
	ans = append(ans, answer("1497", "s1", "t2", "A1", 10, true))
	ans = append(ans, answer("1497", "s1", "t3", "A2", 0, false))

	report, err := b.Run(context.Background(), scenarioSteps(), ans, Filter{ExerciseTypeID: "1497"})
	if err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" {
		t.Fatalf("expected run id")
	}
	if report.MaxScores["1497"] != 10 {
		t.Fatalf("expected max score 10, got %v", report.MaxScores)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}

	want := map[string]float64{"t1": 10, "t2": 1.4, "t3": 0}
	for _, r := range report.Results {
		if r.Error != "" {
			t.Fatalf("unexpected error for %s: %s", r.AttemptID, r.Error)
		}
		if diff := r.Score - want[r.AttemptID]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("attempt %s: expected %v, got %v", r.AttemptID, want[r.AttemptID], r.Score)
		}
	}
	if report.Results[2].Finished {
		t.Fatalf("expected t3 unfinished")
	}
}

func TestBatch_Run_BrokenDefinitionDoesNotStopOthers(t *testing.T) {
	b := NewBatch(realService(), WithLogger(quietLogger()))

	steps := append(scenarioSteps(), brokenSteps()...)
	ans := []exercise.Answer{
		answer("666", "s1", "t1", "Z", 0, true),
		answer("1497", "s1", "t1", "A1", 0, true),
		answer("404", "s1", "t1", "A1", 0, true),
	}

	report, err := b.Run(context.Background(), steps, ans, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.Failed["666"]; !ok {
		t.Fatalf("expected exercise 666 to fail, got %#v", report.Failed)
	}

	byType := map[string]AttemptResult{}
	for _, r := range report.Results {
		byType[r.ExerciseTypeID] = r
	}
	if byType["1497"].Score != 10 || byType["1497"].Error != "" {
		t.Fatalf("expected 1497 scored, got %#v", byType["1497"])
	}
	if byType["666"].Error == "" {
		t.Fatalf("expected error for 666")
	}
	if byType["404"].Error == "" {
		t.Fatalf("expected error for unknown exercise type")
	}
}

func TestBatch_RunSource_PropagatesLoadErrors(t *testing.T) {
	b := NewBatch(realService(), WithLogger(quietLogger()))
	_, err := b.RunSource(context.Background(), &memSource{err: errors.New("disk gone")}, Filter{})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestBatch_RunSource_AppliesScoreOptions(t *testing.T) {
	w := 0.3
	b := NewBatch(realService(), WithLogger(quietLogger()), WithScoreOptions(ScoreOptions{IncompleteWeight: &w}))
	src := &memSource{
		steps:   scenarioSteps(),
		answers: []exercise.Answer{answer("1497", "s1", "t1", "A1", 0, false)},
	}

	report, err := b.RunSource(context.Background(), src, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Score != 7 {
		t.Fatalf("expected 10 - 10*0.3 = 7, got %v", report.Results[0].Score)
	}
}
