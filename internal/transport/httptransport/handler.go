package httptransport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/render"
	"github.com/awmpietro/golang-exercise-scoring/internal/transport/scoredto"
)

const maxBodyBytes = 4 << 20

// modeler is implemented by services that can hand out compiled models.
type modeler interface {
	Model(steps []exercise.Step) (*exercise.Model, error)
}

type Handler struct {
	svc app.ScoreService
}

func NewHandler(svc app.ScoreService) *Handler {
	return &Handler{svc: svc}
}

// Router returns a chi router with the scoring routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.Routes(r)
	return r
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Post("/score", h.Score)
	if _, ok := h.svc.(modeler); ok {
		r.Post("/graph", h.Graph)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()})
		return
	}
	status, out := scoredto.Dispatch(h.svc, body)
	writeJSON(w, status, out)
}

// Graph compiles the posted definition and answers with its DOT rendering.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	m, ok := h.svc.(modeler)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()})
		return
	}
	in, err := scoredto.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()})
		return
	}

	model, err := m.Model(in.Steps)
	if err != nil {
		writeJSON(w, scoredto.Status(err), scoredto.ErrorBody(err, nil))
		return
	}
	dot, err := render.DOT(model)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "render failed", "details": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dot))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
