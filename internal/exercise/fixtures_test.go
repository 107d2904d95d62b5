package exercise

import (
	"math"
	"testing"
	"time"
)

func f(v float64) *float64 { return Float(v) }

// scenarioSteps: step 1 answers A1 (correct, to 2) or A2 (incorrect, back
// to 1), both worth 10; step 2 ends the exercise.
func scenarioSteps() []Step {
	return []Step{
		{ExerciseTypeID: "1497", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A1", PossibleAnswerNextStepID: "2", AnswerInterpretation: Correct, Score: f(10), Format: "single_choice"},
		{ExerciseTypeID: "1497", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A2", PossibleAnswerNextStepID: "1", AnswerInterpretation: Incorrect, Score: f(10), Format: "single_choice"},
		{ExerciseTypeID: "1497", StepID: "2", Score: f(0)},
	}
}

// branchingSteps: primary path 1 -> 2 -> 5. A wrong first answer detours
// through hint 3 into helper question 4 (depth 2), which rejoins at 2.
func branchingSteps() []Step {
	return []Step{
		{ExerciseTypeID: "77", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A1", PossibleAnswerNextStepID: "2", AnswerInterpretation: Correct, Score: f(10)},
		{ExerciseTypeID: "77", StepID: "1", IsFirstStep: true, PossibleAnswerID: "A2", PossibleAnswerNextStepID: "3", AnswerInterpretation: Incorrect, Score: f(10)},
		{ExerciseTypeID: "77", StepID: "2", PossibleAnswerID: "A3", PossibleAnswerNextStepID: "5", AnswerInterpretation: Correct, Score: f(5)},
		{ExerciseTypeID: "77", StepID: "2", PossibleAnswerID: "A4", PossibleAnswerNextStepID: "1", AnswerInterpretation: Neutral, Score: f(0)},
		{ExerciseTypeID: "77", StepID: "3", StepNextStepID: "4"},
		{ExerciseTypeID: "77", StepID: "4", PossibleAnswerID: "A5", PossibleAnswerNextStepID: "2", AnswerInterpretation: Correct, Score: f(4)},
		{ExerciseTypeID: "77", StepID: "4", PossibleAnswerID: "A6", PossibleAnswerNextStepID: "4", AnswerInterpretation: Incorrect, Score: f(4)},
		{ExerciseTypeID: "77", StepID: "5"},
	}
}

// twoQuestionSteps: 1 -(B0 correct,10)-> 2 -(B1 correct,10)-> 3. Step 2
// also has B2 (incorrect, 5, loops) and B3 (neutral, back to 1).
func twoQuestionSteps() []Step {
	return []Step{
		{StepID: "1", IsFirstStep: true, PossibleAnswerID: "B0", PossibleAnswerNextStepID: "2", AnswerInterpretation: Correct, Score: f(10)},
		{StepID: "2", PossibleAnswerID: "B1", PossibleAnswerNextStepID: "3", AnswerInterpretation: Correct, Score: f(10)},
		{StepID: "2", PossibleAnswerID: "B2", PossibleAnswerNextStepID: "2", AnswerInterpretation: Incorrect, Score: f(5)},
		{StepID: "2", PossibleAnswerID: "B3", PossibleAnswerNextStepID: "1", AnswerInterpretation: Neutral, Score: f(0)},
		{StepID: "3"},
	}
}

func answers(ids ...string) []Answer {
	base := time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC)
	out := make([]Answer, 0, len(ids))
	for i, id := range ids {
		out = append(out, Answer{PossibleAnswerID: id, SubmittedAt: base.Add(time.Duration(i) * time.Second)})
	}
	return out
}

func mustCompile(t *testing.T, steps []Step, opts ...CompilerOption) *Model {
	t.Helper()
	m, err := NewCompiler(opts...).Compile(steps)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return m
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
