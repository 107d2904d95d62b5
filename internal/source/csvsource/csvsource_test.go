package csvsource

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

func testdata(name string) string { return filepath.Join("testdata", name) }

func TestSource_Steps(t *testing.T) {
	src := New(testdata("exercise_steps.csv"), testdata("exercise_answers.csv"))

	steps, err := src.Steps(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(steps))
	}

	first := steps[0]
	if first.ExerciseTypeID != "1497" || first.StepID != "1" || first.PossibleAnswerNextStepID != "2" {
		t.Fatalf("ids were not normalized: %#v", first)
	}
	if !first.IsFirstStep || first.AnswerInterpretation != exercise.Correct || first.ScoreValue() != 10 {
		t.Fatalf("unexpected first row: %#v", first)
	}
	if steps[2].PossibleAnswerID != "" || steps[2].Score == nil || *steps[2].Score != 0 {
		t.Fatalf("unexpected terminal row: %#v", steps[2])
	}
	if !steps[5].IsHint() || steps[5].StepNextStepID != "10" {
		t.Fatalf("expected hint row, got %#v", steps[5])
	}
	if steps[3].Weight != nil {
		t.Fatalf("expected empty weight to stay nil")
	}
}

func TestSource_Answers(t *testing.T) {
	src := New(testdata("exercise_steps.csv"), testdata("exercise_answers.csv"))

	answers, err := src.Answers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 5 {
		t.Fatalf("expected 5 answers, got %d", len(answers))
	}

	a := answers[0]
	if a.ExerciseTypeID != "1497" || a.StudentID != "7" || a.PossibleAnswerID != "A2" {
		t.Fatalf("unexpected answer: %#v", a)
	}
	if a.AttemptID != "2024-05-27 07:30:00" {
		t.Fatalf("expected tracking timestamp as attempt id, got %q", a.AttemptID)
	}
	if !a.ExerciseFinished || a.SubmittedAt.IsZero() {
		t.Fatalf("unexpected answer flags: %#v", a)
	}
	if answers[2].ExerciseFinished {
		t.Fatalf("expected unfinished attempt")
	}
}

func TestSource_StepsCompile(t *testing.T) {
	steps, err := New(testdata("exercise_steps.csv"), "").Steps(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var ex1497 []exercise.Step
	for _, s := range steps {
		if s.ExerciseTypeID == "1497" {
			ex1497 = append(ex1497, s)
		}
	}
	m, err := exercise.NewCompiler().Compile(ex1497)
	if err != nil {
		t.Fatal(err)
	}
	if m.MaxScore != 10 {
		t.Fatalf("expected max score 10, got %v", m.MaxScore)
	}
}

func TestReadSteps_MissingColumn(t *testing.T) {
	_, err := ReadSteps(context.Background(), strings.NewReader("exercise_type_id,score\n1,2\n"))
	if err == nil || !strings.Contains(err.Error(), "step_id") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestReadSteps_ReportsLine(t *testing.T) {
	in := "exercise_type_id,step_id,score\n1,1,2\n1,2,lots\n"
	_, err := ReadSteps(context.Background(), strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected error on line 3, got %v", err)
	}
}

func TestReadSteps_RejectsNonFiniteAmounts(t *testing.T) {
	for _, in := range []string{
		"exercise_type_id,step_id,is_first_step,score\n1,1,True,inf\n",
		"exercise_type_id,step_id,is_first_step,weight\n1,1,True,-Inf\n",
		"exercise_type_id,step_id,is_first_step,score\n1,1,True,-3\n",
	} {
		if steps, err := ReadSteps(context.Background(), strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q, got %#v", in, steps)
		}
	}
}

func TestReadAnswers_PrefersAttemptColumn(t *testing.T) {
	in := "exercise_type_id,possible_answer_id,attempt_id,exercise_tracking_finished_at\n1,A1,run-1,2024-01-01\n"
	answers, err := ReadAnswers(context.Background(), strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if answers[0].AttemptID != "run-1" {
		t.Fatalf("expected attempt_id column, got %q", answers[0].AttemptID)
	}
}

func TestReadSteps_EmptyInput(t *testing.T) {
	if _, err := ReadSteps(context.Background(), strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
