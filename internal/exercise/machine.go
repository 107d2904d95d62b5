package exercise

// Updater receives every scoring transition before the state commits.
type Updater interface {
	Apply(t Transition) error
}

// Machine is one attempt's walk over a compiled Model.
type Machine struct {
	model   *Model
	updater Updater
	current string
}

func NewMachine(m *Model, u Updater) *Machine {
	return &Machine{model: m, updater: u, current: StateStart}
}

func (mc *Machine) State() string { return mc.current }

func (mc *Machine) Model() *Model { return mc.model }

func (mc *Machine) Initialize() error {
	_, err := mc.Fire(TriggerInitialization)
	return err
}

// AvailableTriggers lists the triggers of state in definition order.
func (mc *Machine) AvailableTriggers(state string) []string {
	ts := mc.model.TransitionsFrom(state)
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Trigger)
	}
	return out
}

func (mc *Machine) CanFire(trigger string) bool {
	_, ok := mc.model.Lookup(mc.current, trigger)
	return ok
}

// Fire moves the machine along trigger. The score update runs first; if it
// fails the machine stays where it was.
func (mc *Machine) Fire(trigger string) (Transition, error) {
	t, ok := mc.model.Lookup(mc.current, trigger)
	if !ok {
		return Transition{}, &InvalidTransitionError{State: mc.current, Trigger: trigger}
	}

	if t.HasSideEffect() && mc.updater != nil {
		if err := mc.updater.Apply(t); err != nil {
			return Transition{}, err
		}
	}

	mc.current = t.Dest
	return t, nil
}

// ShouldAutoProceed reports whether the current state is a hint that
// advances on its own.
func (mc *Machine) ShouldAutoProceed() bool {
	return mc.model.IsHintState(mc.current) && mc.CanFire(TriggerAutoProceed)
}

// MatchAnswer returns the first trigger from the current state whose
// transition was built for answerID. Matching is exact on the answer id
// rather than a substring test on the trigger name, so "A1" never fires the
// trigger of "A10".
func (mc *Machine) MatchAnswer(answerID string) (string, bool) {
	for _, t := range mc.model.TransitionsFrom(mc.current) {
		if t.AnswerID != "" && t.AnswerID == answerID {
			return t.Trigger, true
		}
	}
	return "", false
}
