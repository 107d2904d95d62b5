package exercise

const (
	DefaultIncompleteWeight = 0.01
	DefaultMaxSteps         = 10_000
)

// Engine replays answer logs against compiled models. It holds only
// configuration, so one Engine serves any number of concurrent attempts.
type Engine struct {
	threshold        int
	incompleteWeight float64
	maxSteps         int
	observer         TransitionObserver
}

type EngineOption func(*Engine)

// WithIncorrectThreshold sets K, the incorrect attempt on which a step is
// penalized.
func WithIncorrectThreshold(k int) EngineOption {
	return func(e *Engine) {
		if k >= 1 {
			e.threshold = k
		}
	}
}

// WithIncompleteWeight sets the fraction of the max score deducted from
// unfinished attempts.
func WithIncompleteWeight(w float64) EngineOption {
	return func(e *Engine) {
		if w >= 0 {
			e.incompleteWeight = w
		}
	}
}

// WithMaxSteps bounds each chain of hint auto-advances.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

func WithTransitionObserver(observer TransitionObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		threshold:        DefaultIncorrectThreshold,
		incompleteWeight: DefaultIncompleteWeight,
		maxSteps:         DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of e with opts applied on top.
func (e *Engine) With(opts ...EngineOption) *Engine {
	cp := *e
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (e *Engine) Threshold() int { return e.threshold }

func (e *Engine) IncompleteWeight() float64 { return e.incompleteWeight }

// NewSession builds a fresh machine and scorer for one attempt.
func (e *Engine) NewSession(m *Model) *Session {
	scorer := NewScorer(m.MaxScore, m.Depth, e.threshold)
	return &Session{
		model:            m,
		machine:          NewMachine(m, scorer),
		scorer:           scorer,
		maxSteps:         e.maxSteps,
		incompleteWeight: e.incompleteWeight,
		observer:         e.observer,
		trace: &ReplayTrace{
			ExerciseTypeID: m.ExerciseTypeID,
			StartState:     StateStart,
			VisitedStates:  []string{StateStart},
			MaxScore:       m.MaxScore,
		},
	}
}

// Run scores one attempt and returns the final score.
func (e *Engine) Run(m *Model, answers []Answer, finished bool) (float64, error) {
	trace, err := e.RunWithTrace(m, answers, finished)
	if err != nil {
		return 0, err
	}
	return trace.Score, nil
}

// RunWithTrace scores one attempt. The trace is returned even on error.
func (e *Engine) RunWithTrace(m *Model, answers []Answer, finished bool) (*ReplayTrace, error) {
	s := e.NewSession(m)
	if err := s.Start(); err != nil {
		return s.Trace(), err
	}
	if err := s.Replay(answers); err != nil {
		return s.Trace(), err
	}
	s.Finish(finished)
	return s.Trace(), nil
}
