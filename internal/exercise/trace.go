package exercise

type ReplayTrace struct {
	ExerciseTypeID string          `json:"exercise_type_id,omitempty"`
	StartState     string          `json:"start_state"`
	VisitedStates  []string        `json:"visited_states"`
	Steps          []TraceStep     `json:"steps"`
	Ignored        []IgnoredAnswer `json:"ignored,omitempty"`
	Penalty        float64         `json:"penalty,omitempty"`
	Score          float64         `json:"score"`
	MaxScore       float64         `json:"max_score"`
	Terminated     string          `json:"terminated"`
}

type TraceStep struct {
	Source         string         `json:"source"`
	Dest           string         `json:"dest"`
	Trigger        string         `json:"trigger"`
	AnswerID       string         `json:"answer_id,omitempty"`
	Interpretation Interpretation `json:"interpretation,omitempty"`
	PathClass      PathClass      `json:"path_class,omitempty"`
	Attempt        int            `json:"attempt"`
	Delta          float64        `json:"delta"`
	ScoreAfter     float64        `json:"score_after"`
	DurationMicros int64          `json:"duration_micros"`
}

type IgnoredAnswer struct {
	PossibleAnswerID string `json:"possible_answer_id"`
	State            string `json:"state"`
}

const (
	TerminatedEnd        = "end"
	TerminatedInProgress = "in_progress"
)
