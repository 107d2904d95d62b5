package exercise

import (
	"fmt"
	"strings"
)

// Transition is one edge of the exercise state machine. The scoring
// parameters are plain data interpreted by the Scorer when the edge fires.
type Transition struct {
	Source         string         `json:"source"`
	Dest           string         `json:"dest"`
	Trigger        string         `json:"trigger"`
	AnswerID       string         `json:"answer_id,omitempty"`
	Weight         float64        `json:"weight"`
	Interpretation Interpretation `json:"interpretation,omitempty"`
	RawScore       float64        `json:"raw_score"`
	PathClass      PathClass      `json:"path_class,omitempty"`
}

// HasSideEffect reports whether firing the transition updates the score.
func (t Transition) HasSideEffect() bool {
	return t.Trigger != TriggerInitialization
}

// Model is the compiled, read-only form of one exercise definition. It is
// shared by every attempt of that exercise.
type Model struct {
	ExerciseTypeID string
	Graph          *Graph
	PrimaryPath    PrimaryPath
	MaxScore       float64
	Depth          DepthMap
	Classes        map[string]PathClass

	states      []string
	transitions []Transition
	bySource    map[string][]int
	lookup      map[string]map[string]int
}

func (m *Model) States() []string {
	out := make([]string, len(m.states))
	copy(out, m.states)
	return out
}

// Transitions returns every transition in construction order, duplicates
// included.
func (m *Model) Transitions() []Transition {
	out := make([]Transition, len(m.transitions))
	copy(out, m.transitions)
	return out
}

// TransitionsFrom returns the transitions reachable by trigger from state,
// in definition order, one per distinct trigger.
func (m *Model) TransitionsFrom(state string) []Transition {
	idx := m.bySource[state]
	out := make([]Transition, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.transitions[i])
	}
	return out
}

func (m *Model) Lookup(state, trigger string) (Transition, bool) {
	i, ok := m.lookup[state][trigger]
	if !ok {
		return Transition{}, false
	}
	return m.transitions[i], true
}

func (m *Model) ClassOf(stepID string) PathClass {
	if c, ok := m.Classes[stepID]; ok {
		return c
	}
	return Primary
}

// IsHintState reports whether state is a hint step that advances without
// student input.
func (m *Model) IsHintState(state string) bool {
	if m.Graph == nil {
		return false
	}
	return m.Graph.IsHintStep(state)
}

type Compiler struct {
	classifier Classifier
}

type CompilerOption func(*Compiler)

func WithClassifier(c Classifier) CompilerOption {
	return func(comp *Compiler) {
		comp.classifier = c
	}
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{classifier: DefaultClassifier}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compiler) Compile(steps []Step) (*Model, error) {
	g, err := NewGraph(steps)
	if err != nil {
		return nil, err
	}

	path, maxScore, err := AnalyzePath(g)
	if err != nil {
		return nil, err
	}

	depth := IndexDepth(g, path)

	m := &Model{
		ExerciseTypeID: g.ExerciseTypeID(),
		Graph:          g,
		PrimaryPath:    path,
		MaxScore:       maxScore,
		Depth:          depth,
		Classes:        make(map[string]PathClass, len(g.order)),
		bySource:       map[string][]int{},
		lookup:         map[string]map[string]int{},
	}

	for _, id := range g.StepIDs() {
		class, err := classify(c.classifier, depth.Of(id))
		if err != nil {
			return nil, fmt.Errorf("classify step %q: %w", id, err)
		}
		m.Classes[id] = class
	}

	m.states = append(m.states, StateStart)
	m.states = append(m.states, g.StepIDs()...)
	m.states = append(m.states, StateEnd)

	for _, row := range g.Rows() {
		t, err := m.transitionFor(row)
		if err != nil {
			return nil, err
		}
		m.add(t)
	}

	m.add(Transition{
		Source:  StateStart,
		Dest:    g.FirstStepID(),
		Trigger: TriggerInitialization,
		Weight:  1,
	})

	return m, nil
}

func (m *Model) transitionFor(row Step) (Transition, error) {
	t := Transition{
		Source:         row.StepID,
		Weight:         row.WeightValue(),
		Interpretation: row.AnswerInterpretation,
		RawScore:       row.ScoreValue(),
		PathClass:      m.ClassOf(row.StepID),
	}

	var dest string
	if row.PossibleAnswerID == "" {
		t.Trigger = TriggerAutoProceed
		if t.Interpretation == "" {
			t.Interpretation = Neutral
		}
		dest = row.StepNextStepID
	} else {
		t.AnswerID = row.PossibleAnswerID
		t.Trigger = AnswerTrigger(row.PossibleAnswerID, row.AnswerInterpretation)
		dest = row.PossibleAnswerNextStepID
	}

	if dest == "" {
		dest = StateEnd
	} else if !m.Graph.Has(dest) {
		return Transition{}, definitionErrorf(m.ExerciseTypeID, row.StepID, "next step %q does not exist", dest)
	}
	t.Dest = dest

	return t, nil
}

func (m *Model) add(t Transition) {
	m.transitions = append(m.transitions, t)
	i := len(m.transitions) - 1

	triggers, ok := m.lookup[t.Source]
	if !ok {
		triggers = map[string]int{}
		m.lookup[t.Source] = triggers
	}
	if _, dup := triggers[t.Trigger]; dup {
		return
	}
	triggers[t.Trigger] = i
	m.bySource[t.Source] = append(m.bySource[t.Source], i)
}

// AnswerTrigger names the trigger fired by choosing answerID.
func AnswerTrigger(answerID string, interp Interpretation) string {
	var b strings.Builder
	b.WriteString("answer_")
	b.WriteString(answerID)
	switch interp {
	case Correct, Incorrect, Neutral:
		b.WriteString("_")
		b.WriteString(string(interp))
		b.WriteString("_answer")
	}
	return b.String()
}
