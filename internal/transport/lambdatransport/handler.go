// Package lambdatransport adapts API Gateway HTTP events to the scoring
// service.
package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/scoredto"
)

type Handler struct {
	svc app.ScoreService
}

func NewHandler(svc app.ScoreService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Score(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return respond(http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()}), nil
		}
		body = b
	}
	return respond(scoredto.Dispatch(h.svc, body)), nil
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
