package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

// Source supplies definition rows and answer logs.
type Source interface {
	Steps(ctx context.Context) ([]exercise.Step, error)
	Answers(ctx context.Context) ([]exercise.Answer, error)
}

// Filter narrows a batch. Empty fields match everything.
type Filter struct {
	ExerciseTypeID string
	StudentID      string
}

// Attempt is one answer log: the answers of one student for one exercise
// under one attempt id, in submission order.
type Attempt struct {
	ExerciseTypeID string
	StudentID      string
	AttemptID      string
	Answers        []exercise.Answer
}

// Finished reports the finished flag of the earliest answer.
func (a Attempt) Finished() bool {
	if len(a.Answers) == 0 {
		return false
	}
	return a.Answers[0].ExerciseFinished
}

type AttemptResult struct {
	ExerciseTypeID string  `json:"exercise_type_id"`
	StudentID      string  `json:"student_id,omitempty"`
	AttemptID      string  `json:"attempt_id"`
	Answers        int     `json:"answers"`
	Ignored        int     `json:"ignored_answers"`
	Finished       bool    `json:"finished"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`
	Error          string  `json:"error,omitempty"`
}

type BatchReport struct {
	RunID     string             `json:"run_id"`
	MaxScores map[string]float64 `json:"max_scores"`
	Failed    map[string]string  `json:"failed_exercises,omitempty"`
	Results   []AttemptResult    `json:"results"`
}

type Batch struct {
	svc     *Service
	workers int
	opts    ScoreOptions
	logger  *slog.Logger
}

type BatchOption func(*Batch)

func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithScoreOptions(opts ScoreOptions) BatchOption {
	return func(b *Batch) {
		b.opts = opts
	}
}

func WithLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBatch(svc *Service, opts ...BatchOption) *Batch {
	b := &Batch{svc: svc, workers: 4, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunSource loads everything from src and runs the batch.
func (b *Batch) RunSource(ctx context.Context, src Source, filter Filter) (*BatchReport, error) {
	steps, err := src.Steps(ctx)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	answers, err := src.Answers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	return b.Run(ctx, steps, answers, filter)
}

// Run filters, groups by attempt and scores every attempt. A malformed
// definition fails only the attempts of its own exercise type.
func (b *Batch) Run(ctx context.Context, steps []exercise.Step, answers []exercise.Answer, filter Filter) (*BatchReport, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}

	report := &BatchReport{
		RunID:     uuid.NewString(),
		MaxScores: map[string]float64{},
		Failed:    map[string]string{},
	}

	definitions := GroupSteps(FilterSteps(steps, filter.ExerciseTypeID))
	models := make(map[string]*exercise.Model, len(definitions))
	for _, typeID := range sortedKeys(definitions) {
		m, err := b.svc.Model(definitions[typeID])
		if err != nil {
			b.logger.Error("exercise definition rejected", "run_id", report.RunID, "exercise_type_id", typeID, "error", err)
			report.Failed[typeID] = err.Error()
			continue
		}
		models[typeID] = m
		report.MaxScores[typeID] = m.MaxScore
		b.logger.Info("exercise compiled", "run_id", report.RunID, "exercise_type_id", typeID, "max_score", m.MaxScore, "primary_path", m.PrimaryPath)
	}

	attempts := GroupAttempts(FilterAnswers(answers, filter))
	report.Results = make([]AttemptResult, len(attempts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, a := range attempts {
		report.Results[i] = AttemptResult{
			ExerciseTypeID: a.ExerciseTypeID,
			StudentID:      a.StudentID,
			AttemptID:      a.AttemptID,
			Answers:        len(a.Answers),
			Finished:       a.Finished(),
		}

		m, ok := models[a.ExerciseTypeID]
		if !ok {
			if reason, failed := report.Failed[a.ExerciseTypeID]; failed {
				report.Results[i].Error = reason
			} else {
				report.Results[i].Error = "no definition for exercise type"
			}
			continue
		}
		report.Results[i].MaxScore = m.MaxScore

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := b.svc.Replay(m, a.Answers, a.Finished(), b.opts)
			out := &report.Results[i]
			if res != nil {
				out.Score = res.Score
				out.Ignored = res.Ignored
			}
			if err != nil {
				out.Error = err.Error()
				b.logger.Error("attempt replay failed", "run_id", report.RunID, "exercise_type_id", a.ExerciseTypeID, "attempt_id", a.AttemptID, "error", err)
				return nil
			}
			b.logger.Debug("attempt scored", "run_id", report.RunID, "exercise_type_id", a.ExerciseTypeID, "attempt_id", a.AttemptID, "score", out.Score)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	return report, nil
}

func FilterSteps(steps []exercise.Step, exerciseTypeID string) []exercise.Step {
	if exerciseTypeID == "" {
		return steps
	}
	out := make([]exercise.Step, 0, len(steps))
	for _, s := range steps {
		if s.ExerciseTypeID == exerciseTypeID {
			out = append(out, s)
		}
	}
	return out
}

func FilterAnswers(answers []exercise.Answer, filter Filter) []exercise.Answer {
	out := make([]exercise.Answer, 0, len(answers))
	for _, a := range answers {
		if filter.ExerciseTypeID != "" && a.ExerciseTypeID != filter.ExerciseTypeID {
			continue
		}
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// GroupSteps splits rows by exercise type, keeping definition order.
func GroupSteps(steps []exercise.Step) map[string][]exercise.Step {
	out := map[string][]exercise.Step{}
	for _, s := range steps {
		out[s.ExerciseTypeID] = append(out[s.ExerciseTypeID], s)
	}
	return out
}

// GroupAttempts splits answers by (exercise type, student, attempt id). Each
// attempt is sorted by submission time; attempts come back ordered by key.
func GroupAttempts(answers []exercise.Answer) []Attempt {
	type key struct{ typeID, studentID, attemptID string }

	index := map[key]int{}
	var out []Attempt
	for _, a := range answers {
		k := key{a.ExerciseTypeID, a.StudentID, a.AttemptID}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Attempt{ExerciseTypeID: k.typeID, StudentID: k.studentID, AttemptID: k.attemptID})
		}
		out[i].Answers = append(out[i].Answers, a)
	}

	for i := range out {
		out[i].Answers = exercise.SortAnswers(out[i].Answers)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExerciseTypeID != out[j].ExerciseTypeID {
			return out[i].ExerciseTypeID < out[j].ExerciseTypeID
		}
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].AttemptID < out[j].AttemptID
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
