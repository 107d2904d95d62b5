package scoredto

import (
	"encoding/json"
	"net/http"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
)

// Decode parses a score request body.
func Decode(body []byte) (ScoreRequest, error) {
	var in ScoreRequest
	err := json.Unmarshal(body, &in)
	return in, err
}

// Dispatch scores one request body against svc and returns the status code
// and the value to encode as the response. Transports only move bytes.
func Dispatch(svc app.ScoreService, body []byte) (int, any) {
	in, err := Decode(body)
	if err != nil {
		return http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()}
	}

	if in.Debug {
		res, err := svc.ScoreWithTrace(in.App())
		if err != nil {
			return Status(err), ErrorBody(err, res)
		}
		return http.StatusOK, FromResult(res)
	}

	res, err := svc.Score(in.App())
	if err != nil {
		return Status(err), ErrorBody(err, nil)
	}
	return http.StatusOK, FromResult(res)
}
