package exercise

import (
	"fmt"
	"sort"
	"time"
)

// Session drives one attempt through its answer log.
type Session struct {
	model            *Model
	machine          *Machine
	scorer           *Scorer
	maxSteps         int
	incompleteWeight float64
	observer         TransitionObserver
	trace            *ReplayTrace
}

func (s *Session) State() string { return s.machine.State() }

func (s *Session) Score() float64 { return s.scorer.Score() }

func (s *Session) Machine() *Machine { return s.machine }

func (s *Session) Scorer() *Scorer { return s.scorer }

func (s *Session) Trace() *ReplayTrace {
	s.trace.Score = s.scorer.Score()
	if s.machine.State() == StateEnd {
		s.trace.Terminated = TerminatedEnd
	} else {
		s.trace.Terminated = TerminatedInProgress
	}
	return s.trace
}

// Start fires the initialization transition.
func (s *Session) Start() error {
	_, err := s.fire(TriggerInitialization)
	return err
}

// Replay submits answers in submission-time order.
func (s *Session) Replay(answers []Answer) error {
	if s.machine.State() == StateStart {
		if err := s.Start(); err != nil {
			return err
		}
	}
	for _, a := range SortAnswers(answers) {
		if _, err := s.Submit(a); err != nil {
			return err
		}
	}
	return nil
}

// Submit advances through pending hints and then applies a. It returns
// false when a is not a valid answer for the current state; that is not an
// error.
func (s *Session) Submit(a Answer) (bool, error) {
	steps := 0
	for s.machine.ShouldAutoProceed() {
		if steps >= s.maxSteps {
			return false, fmt.Errorf("state %q: %w", s.machine.State(), ErrMaxStepsExceeded)
		}
		if _, err := s.fire(TriggerAutoProceed); err != nil {
			return false, err
		}
		steps++
	}

	trigger, ok := s.machine.MatchAnswer(a.PossibleAnswerID)
	if !ok {
		s.trace.Ignored = append(s.trace.Ignored, IgnoredAnswer{
			PossibleAnswerID: a.PossibleAnswerID,
			State:            s.machine.State(),
		})
		return false, nil
	}

	if _, err := s.fire(trigger); err != nil {
		return false, err
	}
	return true, nil
}

// Finish applies the completion penalty to unfinished attempts and returns
// the final score.
func (s *Session) Finish(finished bool) float64 {
	if !finished {
		before := s.scorer.Score()
		s.scorer.Penalize(s.model.MaxScore * s.incompleteWeight)
		s.trace.Penalty = before - s.scorer.Score()
	}
	return s.scorer.Score()
}

func (s *Session) fire(trigger string) (Transition, error) {
	start := time.Now()
	before := s.scorer.Score()

	t, err := s.machine.Fire(trigger)
	if err != nil {
		return Transition{}, err
	}

	after := s.scorer.Score()
	dur := time.Since(start)

	s.trace.VisitedStates = append(s.trace.VisitedStates, t.Dest)
	s.trace.Steps = append(s.trace.Steps, TraceStep{
		Source:         t.Source,
		Dest:           t.Dest,
		Trigger:        t.Trigger,
		AnswerID:       t.AnswerID,
		Interpretation: t.Interpretation,
		PathClass:      t.PathClass,
		Attempt:        s.scorer.Attempts(t.Source),
		Delta:          after - before,
		ScoreAfter:     after,
		DurationMicros: dur.Microseconds(),
	})

	if s.observer != nil {
		s.observer.ObserveTransition(TransitionEvent{
			ExerciseTypeID: s.model.ExerciseTypeID,
			Source:         t.Source,
			Dest:           t.Dest,
			Trigger:        t.Trigger,
			Delta:          after - before,
			Score:          after,
			Duration:       dur,
		})
	}

	return t, nil
}

// SortAnswers returns a copy of answers ordered by submission time. Equal
// timestamps keep their input order.
func SortAnswers(answers []Answer) []Answer {
	out := make([]Answer, len(answers))
	copy(out, answers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}
