// Package yamlsource reads hand-authored exercise definitions and answer
// logs from a YAML document.
package yamlsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/source"
)

// Document is the file layout. Steps and answers inherit the exercise type
// of their enclosing block when they leave it out.
type Document struct {
	Exercises []Exercise        `yaml:"exercises"`
	Attempts  []AttemptBlock    `yaml:"attempts"`
	Answers   []exercise.Answer `yaml:"answers"`
}

type Exercise struct {
	ExerciseTypeID string          `yaml:"exercise_type_id"`
	Steps          []exercise.Step `yaml:"steps"`
}

type AttemptBlock struct {
	ExerciseTypeID string            `yaml:"exercise_type_id"`
	StudentID      string            `yaml:"student_id"`
	AttemptID      string            `yaml:"attempt_id"`
	Finished       bool              `yaml:"finished"`
	Answers        []exercise.Answer `yaml:"answers"`
}

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Steps(ctx context.Context) ([]exercise.Step, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.AllSteps(), nil
}

func (s *Source) Answers(ctx context.Context) ([]exercise.Answer, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.AllAnswers(), nil
}

func (s *Source) load() (*Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open definition file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads one document, rejecting unknown keys.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &doc, nil
}

func (d *Document) AllSteps() []exercise.Step {
	var out []exercise.Step
	for _, ex := range d.Exercises {
		typeID := source.NormalizeID(ex.ExerciseTypeID)
		for _, st := range ex.Steps {
			if st.ExerciseTypeID == "" {
				st.ExerciseTypeID = typeID
			}
			st.ExerciseTypeID = source.NormalizeID(st.ExerciseTypeID)
			st.StepID = source.NormalizeID(st.StepID)
			st.PossibleAnswerNextStepID = source.NormalizeID(st.PossibleAnswerNextStepID)
			st.StepNextStepID = source.NormalizeID(st.StepNextStepID)
			out = append(out, st)
		}
	}
	return out
}

func (d *Document) AllAnswers() []exercise.Answer {
	out := make([]exercise.Answer, 0, len(d.Answers))
	for _, a := range d.Answers {
		out = append(out, normalizeAnswer(a))
	}
	for _, block := range d.Attempts {
		for _, a := range block.Answers {
			if a.ExerciseTypeID == "" {
				a.ExerciseTypeID = block.ExerciseTypeID
			}
			if a.StudentID == "" {
				a.StudentID = block.StudentID
			}
			if a.AttemptID == "" {
				a.AttemptID = block.AttemptID
			}
			a.ExerciseFinished = a.ExerciseFinished || block.Finished
			out = append(out, normalizeAnswer(a))
		}
	}
	return out
}

func normalizeAnswer(a exercise.Answer) exercise.Answer {
	a.ExerciseTypeID = source.NormalizeID(a.ExerciseTypeID)
	a.StudentID = source.NormalizeID(a.StudentID)
	return a
}
