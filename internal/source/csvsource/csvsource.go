// Package csvsource reads exercise definitions and answer logs from the
// CSV exports of the exercise database.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/source"
)

type Source struct {
	stepsPath   string
	answersPath string
}

func New(stepsPath, answersPath string) *Source {
	return &Source{stepsPath: stepsPath, answersPath: answersPath}
}

func (s *Source) Steps(ctx context.Context) ([]exercise.Step, error) {
	f, err := os.Open(s.stepsPath)
	if err != nil {
		return nil, fmt.Errorf("open steps file: %w", err)
	}
	defer f.Close()
	return ReadSteps(ctx, f)
}

func (s *Source) Answers(ctx context.Context) ([]exercise.Answer, error) {
	if s.answersPath == "" {
		return nil, nil
	}
	f, err := os.Open(s.answersPath)
	if err != nil {
		return nil, fmt.Errorf("open answers file: %w", err)
	}
	defer f.Close()
	return ReadAnswers(ctx, f)
}

// ReadSteps parses a steps export. Columns are matched by header name, so
// extra columns and any column order are accepted.
func ReadSteps(ctx context.Context, r io.Reader) ([]exercise.Step, error) {
	var out []exercise.Step
	err := readRows(ctx, r, []string{"exercise_type_id", "step_id"}, func(row record) error {
		st, err := stepFromRecord(row)
		if err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

// ReadAnswers parses an answers export. Without an attempt_id column the
// tracking-finished timestamp identifies the attempt.
func ReadAnswers(ctx context.Context, r io.Reader) ([]exercise.Answer, error) {
	var out []exercise.Answer
	err := readRows(ctx, r, []string{"exercise_type_id", "possible_answer_id"}, func(row record) error {
		a, err := answerFromRecord(row)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func stepFromRecord(row record) (exercise.Step, error) {
	first, err := source.ParseBool(row.get("is_first_step"))
	if err != nil {
		return exercise.Step{}, fmt.Errorf("is_first_step: %w", err)
	}
	score, err := source.ParseFloat(row.get("score"))
	if err != nil {
		return exercise.Step{}, fmt.Errorf("score: %w", err)
	}
	weight, err := source.ParseFloat(row.get("weight"))
	if err != nil {
		return exercise.Step{}, fmt.Errorf("weight: %w", err)
	}
	interp, err := source.ParseInterpretation(row.get("answer_interpretation"))
	if err != nil {
		return exercise.Step{}, err
	}

	return exercise.Step{
		ExerciseTypeID:           source.NormalizeID(row.get("exercise_type_id")),
		StepID:                   source.NormalizeID(row.get("step_id")),
		IsFirstStep:              first,
		PossibleAnswerID:         source.NormalizeID(row.get("possible_answer_id")),
		PossibleAnswerNextStepID: source.NormalizeID(row.get("possible_answer_next_step_id")),
		StepNextStepID:           source.NormalizeID(row.get("step_next_step_id")),
		AnswerInterpretation:     interp,
		AnswerText:               strings.TrimSpace(row.get("answer_text")),
		Format:                   strings.TrimSpace(row.get("format")),
		Score:                    score,
		Weight:                   weight,
	}, nil
}

func answerFromRecord(row record) (exercise.Answer, error) {
	submitted, err := source.ParseTime(row.get("ans_inserted_at"))
	if err != nil {
		return exercise.Answer{}, fmt.Errorf("ans_inserted_at: %w", err)
	}
	finished, err := source.ParseBool(row.get("is_exercise_finished"))
	if err != nil {
		return exercise.Answer{}, fmt.Errorf("is_exercise_finished: %w", err)
	}

	attempt := strings.TrimSpace(row.get("attempt_id"))
	if attempt == "" {
		attempt = strings.TrimSpace(row.get("exercise_tracking_finished_at"))
	}

	return exercise.Answer{
		ExerciseTypeID:   source.NormalizeID(row.get("exercise_type_id")),
		StudentID:        source.NormalizeID(row.get("student_id")),
		AttemptID:        attempt,
		PossibleAnswerID: source.NormalizeID(row.get("possible_answer_id")),
		SubmittedAt:      submitted,
		ExerciseFinished: finished,
	}, nil
}

type record struct {
	header map[string]int
	fields []string
}

func (r record) get(column string) string {
	i, ok := r.header[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func readRows(ctx context.Context, r io.Reader, required []string, fn func(record) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("csv: missing header")
	}
	if err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("csv: missing column %q", col)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv: %w", err)
		}
		if isBlank(fields) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if err := fn(record{header: header, fields: fields}); err != nil {
			return fmt.Errorf("csv line %d: %w", line, err)
		}
	}
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
