package scoredto

import (
	"errors"
	"net/http"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

type ScoreRequest struct {
	Steps    []exercise.Step   `json:"steps"`
	Answers  []exercise.Answer `json:"answers"`
	Finished bool              `json:"finished"`
	Options  app.ScoreOptions  `json:"options"`
	Debug    bool              `json:"debug,omitempty"`
}

func (r ScoreRequest) App() app.ScoreRequest {
	return app.ScoreRequest{
		Steps:    r.Steps,
		Answers:  r.Answers,
		Finished: r.Finished,
		Options:  r.Options,
	}
}

type ScoreResponse struct {
	ExerciseTypeID string                `json:"exercise_type_id,omitempty"`
	Score          float64               `json:"score"`
	MaxScore       float64               `json:"max_score"`
	PrimaryPath    []string              `json:"primary_path"`
	Finished       bool                  `json:"finished"`
	IgnoredAnswers int                   `json:"ignored_answers"`
	Trace          *exercise.ReplayTrace `json:"trace,omitempty"`
}

func FromResult(res *app.ScoreResult) ScoreResponse {
	return ScoreResponse{
		ExerciseTypeID: res.ExerciseTypeID,
		Score:          res.Score,
		MaxScore:       res.MaxScore,
		PrimaryPath:    res.PrimaryPath,
		Finished:       res.Finished,
		IgnoredAnswers: res.Ignored,
		Trace:          res.Trace,
	}
}

// Status maps a scoring error to an HTTP status. Definitions that cannot be
// compiled and replays that blow the step budget are 422; anything else is
// a bad request.
func Status(err error) int {
	if exercise.IsDefinitionError(err) || errors.Is(err, exercise.ErrMaxStepsExceeded) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func ErrorBody(err error, res *app.ScoreResult) map[string]any {
	body := map[string]any{
		"error":   "score failed",
		"details": err.Error(),
	}
	var defErr *exercise.DefinitionError
	if errors.As(err, &defErr) {
		body["exercise_type_id"] = defErr.ExerciseTypeID
		if defErr.StepID != "" {
			body["step_id"] = defErr.StepID
		}
	}
	if res != nil && res.Trace != nil {
		body["trace"] = res.Trace
	}
	return body
}
