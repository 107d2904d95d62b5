package app

import (
	"fmt"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/cache"
)

type Compiler interface {
	Compile(steps []exercise.Step) (*exercise.Model, error)
}

type Engine interface {
	RunWithTrace(m *exercise.Model, answers []exercise.Answer, finished bool) (*exercise.ReplayTrace, error)
}

// ConfigurableEngine accepts per-request overrides of K and the incomplete
// weight.
type ConfigurableEngine interface {
	Engine
	With(opts ...exercise.EngineOption) *exercise.Engine
}

type Cache interface {
	GetOrCompute(key string, fn func() (*exercise.Model, error)) (*exercise.Model, error)
}

type ScoreOptions struct {
	K                *int     `json:"k,omitempty"`
	IncompleteWeight *float64 `json:"incomplete_weight,omitempty"`
}

func (o ScoreOptions) engineOptions() []exercise.EngineOption {
	var opts []exercise.EngineOption
	if o.K != nil {
		opts = append(opts, exercise.WithIncorrectThreshold(*o.K))
	}
	if o.IncompleteWeight != nil {
		opts = append(opts, exercise.WithIncompleteWeight(*o.IncompleteWeight))
	}
	return opts
}

func (o ScoreOptions) validate() error {
	if o.K != nil && *o.K < 1 {
		return fmt.Errorf("k must be >= 1 (got %d)", *o.K)
	}
	if o.IncompleteWeight != nil && *o.IncompleteWeight < 0 {
		return fmt.Errorf("incomplete_weight must be >= 0 (got %v)", *o.IncompleteWeight)
	}
	return nil
}

type ScoreRequest struct {
	Steps    []exercise.Step
	Answers  []exercise.Answer
	Finished bool
	Options  ScoreOptions
}

type ScoreResult struct {
	ExerciseTypeID string                `json:"exercise_type_id,omitempty"`
	Score          float64               `json:"score"`
	MaxScore       float64               `json:"max_score"`
	PrimaryPath    []string              `json:"primary_path"`
	Finished       bool                  `json:"finished"`
	Ignored        int                   `json:"ignored_answers"`
	Trace          *exercise.ReplayTrace `json:"trace,omitempty"`
}

type Service struct {
	compiler Compiler
	engine   Engine
	cache    Cache
}

func NewService(compiler Compiler, engine Engine, cache Cache) *Service {
	return &Service{compiler: compiler, engine: engine, cache: cache}
}

// Model compiles (cached) an exercise definition.
func (s *Service) Model(steps []exercise.Step) (*exercise.Model, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("steps are required")
	}
	key, err := cache.Key(steps)
	if err != nil {
		// Unhashable definitions bypass the cache; the compiler reports why.
		return s.compiler.Compile(steps)
	}
	return s.cache.GetOrCompute(key, func() (*exercise.Model, error) {
		return s.compiler.Compile(steps)
	})
}

// Score compiles the definition and replays one attempt.
func (s *Service) Score(req ScoreRequest) (*ScoreResult, error) {
	res, err := s.ScoreWithTrace(req)
	if err != nil {
		return nil, err
	}
	res.Trace = nil
	return res, nil
}

// ScoreWithTrace is Score plus the replay trace. On a replay error the
// partial result is returned with the error.
func (s *Service) ScoreWithTrace(req ScoreRequest) (*ScoreResult, error) {
	if err := req.Options.validate(); err != nil {
		return nil, err
	}

	m, err := s.Model(req.Steps)
	if err != nil {
		return nil, err
	}

	return s.Replay(m, req.Answers, req.Finished, req.Options)
}

// Replay scores one attempt against an already compiled model.
func (s *Service) Replay(m *exercise.Model, answers []exercise.Answer, finished bool, opts ScoreOptions) (*ScoreResult, error) {
	engine := s.engine
	if extra := opts.engineOptions(); len(extra) > 0 {
		if ce, ok := s.engine.(ConfigurableEngine); ok {
			engine = ce.With(extra...)
		}
	}

	trace, err := engine.RunWithTrace(m, answers, finished)

	res := &ScoreResult{
		ExerciseTypeID: m.ExerciseTypeID,
		MaxScore:       m.MaxScore,
		PrimaryPath:    append([]string(nil), m.PrimaryPath...),
		Finished:       finished,
		Trace:          trace,
	}
	if trace != nil {
		res.Score = trace.Score
		res.Ignored = len(trace.Ignored)
	}
	if err != nil {
		return res, err
	}
	return res, nil
}
