package exercise

import "time"

const (
	StateStart = "start"
	StateEnd   = "end"

	TriggerInitialization = "initialization"
	TriggerAutoProceed    = "auto_proceed"
)

type Interpretation string

const (
	Correct   Interpretation = "correct"
	Incorrect Interpretation = "incorrect"
	Neutral   Interpretation = "neutral"
)

type PathClass string

const (
	Primary PathClass = "primary"
	Helper  PathClass = "helper"
)

// Step is one row of an exercise definition. A question step is spread over
// several rows sharing StepID, one per answer option.
type Step struct {
	ExerciseTypeID           string         `json:"exercise_type_id,omitempty" yaml:"exercise_type_id,omitempty"`
	StepID                   string         `json:"step_id" yaml:"step_id"`
	IsFirstStep              bool           `json:"is_first_step,omitempty" yaml:"is_first_step,omitempty"`
	PossibleAnswerID         string         `json:"possible_answer_id,omitempty" yaml:"possible_answer_id,omitempty"`
	PossibleAnswerNextStepID string         `json:"possible_answer_next_step_id,omitempty" yaml:"possible_answer_next_step_id,omitempty"`
	StepNextStepID           string         `json:"step_next_step_id,omitempty" yaml:"step_next_step_id,omitempty"`
	AnswerInterpretation     Interpretation `json:"answer_interpretation,omitempty" yaml:"answer_interpretation,omitempty"`
	AnswerText               string         `json:"answer_text,omitempty" yaml:"answer_text,omitempty"`
	Format                   string         `json:"format,omitempty" yaml:"format,omitempty"`
	Score                    *float64       `json:"score,omitempty" yaml:"score,omitempty"`
	Weight                   *float64       `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// IsHint reports whether the row carries no answer data at all.
func (s Step) IsHint() bool {
	return s.Format == "" &&
		s.Score == nil &&
		s.PossibleAnswerID == "" &&
		s.PossibleAnswerNextStepID == "" &&
		s.AnswerText == "" &&
		s.AnswerInterpretation == ""
}

// IsTerminal reports whether the row ends the exercise.
func (s Step) IsTerminal() bool {
	return s.PossibleAnswerNextStepID == "" && s.StepNextStepID == ""
}

func (s Step) ScoreValue() float64 {
	if s.Score == nil {
		return 0
	}
	return *s.Score
}

func (s Step) WeightValue() float64 {
	if s.Weight == nil {
		return 1
	}
	return *s.Weight
}

// NextStepID is the hop used for graph exploration: the answer link when
// present, the unconditional link otherwise.
func (s Step) NextStepID() string {
	if s.PossibleAnswerNextStepID != "" {
		return s.PossibleAnswerNextStepID
	}
	return s.StepNextStepID
}

// Answer is one submitted answer of a student.
type Answer struct {
	ExerciseTypeID   string    `json:"exercise_type_id,omitempty" yaml:"exercise_type_id,omitempty"`
	StudentID        string    `json:"student_id,omitempty" yaml:"student_id,omitempty"`
	AttemptID        string    `json:"attempt_id,omitempty" yaml:"attempt_id,omitempty"`
	PossibleAnswerID string    `json:"possible_answer_id" yaml:"possible_answer_id"`
	SubmittedAt      time.Time `json:"submitted_at" yaml:"submitted_at"`
	ExerciseFinished bool      `json:"exercise_finished,omitempty" yaml:"exercise_finished,omitempty"`
}

// Float returns a pointer to v, for building optional Step fields.
func Float(v float64) *float64 { return &v }
