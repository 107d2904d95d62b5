package exercise

import (
	"errors"
	"testing"
)

type spyUpdater struct {
	applied []Transition
	err     error
}

func (s *spyUpdater) Apply(t Transition) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, t)
	return nil
}

func TestCompile_BuildsStatesAndTriggers(t *testing.T) {
	m := mustCompile(t, branchingSteps())

	states := m.States()
	if states[0] != StateStart || states[len(states)-1] != StateEnd {
		t.Fatalf("expected start/end around step states, got %v", states)
	}
	if len(states) != 7 {
		t.Fatalf("expected 7 states, got %d", len(states))
	}

	mc := NewMachine(m, &spyUpdater{})
	got := mc.AvailableTriggers("1")
	if len(got) != 2 || got[0] != "answer_A1_correct_answer" || got[1] != "answer_A2_incorrect_answer" {
		t.Fatalf("unexpected triggers for 1: %v", got)
	}
	if got := mc.AvailableTriggers("3"); len(got) != 1 || got[0] != TriggerAutoProceed {
		t.Fatalf("unexpected triggers for hint 3: %v", got)
	}
	if got := mc.AvailableTriggers(StateStart); len(got) != 1 || got[0] != TriggerInitialization {
		t.Fatalf("unexpected triggers for start: %v", got)
	}

	tr, ok := m.Lookup("5", TriggerAutoProceed)
	if !ok || tr.Dest != StateEnd {
		t.Fatalf("expected terminal step 5 to auto-proceed to end, got %#v", tr)
	}
}

func TestMachine_InitializeHasNoSideEffect(t *testing.T) {
	u := &spyUpdater{}
	mc := NewMachine(mustCompile(t, scenarioSteps()), u)

	if err := mc.Initialize(); err != nil {
		t.Fatal(err)
	}
	if mc.State() != "1" {
		t.Fatalf("expected state 1, got %q", mc.State())
	}
	if len(u.applied) != 0 {
		t.Fatalf("initialization must not update the score")
	}
}

func TestMachine_FireUnavailableTrigger(t *testing.T) {
	mc := NewMachine(mustCompile(t, scenarioSteps()), &spyUpdater{})

	_, err := mc.Fire("answer_A1_correct_answer")
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.State != StateStart {
		t.Fatalf("expected error from start, got %q", invalid.State)
	}
	if mc.State() != StateStart {
		t.Fatalf("state must not move on invalid trigger")
	}
}

func TestMachine_FailsClosedWhenUpdateFails(t *testing.T) {
	u := &spyUpdater{}
	mc := NewMachine(mustCompile(t, scenarioSteps()), u)
	if err := mc.Initialize(); err != nil {
		t.Fatal(err)
	}

	u.err = errors.New("update failed")
	if _, err := mc.Fire("answer_A1_correct_answer"); err == nil {
		t.Fatalf("expected error")
	}
	if mc.State() != "1" {
		t.Fatalf("expected machine to stay at 1, got %q", mc.State())
	}
}

func TestMachine_FirePassesTransitionData(t *testing.T) {
	u := &spyUpdater{}
	mc := NewMachine(mustCompile(t, scenarioSteps()), u)
	if err := mc.Initialize(); err != nil {
		t.Fatal(err)
	}

	if _, err := mc.Fire("answer_A2_incorrect_answer"); err != nil {
		t.Fatal(err)
	}
	if len(u.applied) != 1 {
		t.Fatalf("expected one update, got %d", len(u.applied))
	}
	got := u.applied[0]
	if got.Source != "1" || got.Interpretation != Incorrect || got.RawScore != 10 || got.Weight != 1 || got.PathClass != Primary {
		t.Fatalf("unexpected transition data: %#v", got)
	}
}

func TestCompile_DuplicateTriggerKeepsFirstRow(t *testing.T) {
	steps := append(scenarioSteps(), Step{
		StepID: "1", PossibleAnswerID: "A1", PossibleAnswerNextStepID: "1", AnswerInterpretation: Correct, Score: Float(99),
	})
	m := mustCompile(t, steps)

	tr, ok := m.Lookup("1", "answer_A1_correct_answer")
	if !ok {
		t.Fatalf("expected trigger")
	}
	if tr.Dest != "2" || tr.RawScore != 10 {
		t.Fatalf("expected first row to win, got %#v", tr)
	}
	if len(m.TransitionsFrom("1")) != 2 {
		t.Fatalf("expected duplicates collapsed, got %d", len(m.TransitionsFrom("1")))
	}
	if len(m.Transitions()) != 5 {
		t.Fatalf("expected all rows kept for rendering, got %d", len(m.Transitions()))
	}
}

func TestCompile_UnknownDestinationIsDefinitionError(t *testing.T) {
	steps := append(scenarioSteps(), Step{
		StepID: "1", PossibleAnswerID: "A9", PossibleAnswerNextStepID: "404", AnswerInterpretation: Neutral, Score: Float(0),
	})

	_, err := NewCompiler().Compile(steps)
	if !IsDefinitionError(err) {
		t.Fatalf("expected DefinitionError, got %v", err)
	}
}

func TestMachine_MatchAnswerIsExact(t *testing.T) {
	steps := []Step{
		{StepID: "1", IsFirstStep: true, PossibleAnswerID: "12", PossibleAnswerNextStepID: "2", AnswerInterpretation: Correct, Score: Float(1)},
		{StepID: "2"},
	}
	mc := NewMachine(mustCompile(t, steps), &spyUpdater{})
	if err := mc.Initialize(); err != nil {
		t.Fatal(err)
	}

	if _, ok := mc.MatchAnswer("1"); ok {
		t.Fatalf("answer 1 must not match the trigger of answer 12")
	}
	if trig, ok := mc.MatchAnswer("12"); !ok || trig != "answer_12_correct_answer" {
		t.Fatalf("expected answer 12 to match, got %q", trig)
	}
}

func TestAnswerTrigger(t *testing.T) {
	tests := []struct {
		id     string
		interp Interpretation
		want   string
	}{
		{"7", Correct, "answer_7_correct_answer"},
		{"7", Incorrect, "answer_7_incorrect_answer"},
		{"7", Neutral, "answer_7_neutral_answer"},
		{"7", "", "answer_7"},
	}
	for _, tc := range tests {
		if got := AnswerTrigger(tc.id, tc.interp); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
