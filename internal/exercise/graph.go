package exercise

import (
	"math"
	"strings"
)

// Graph indexes the rows of one exercise definition by step id.
type Graph struct {
	exerciseTypeID string
	firstStepID    string
	order          []string
	all            []Step
	rows           map[string][]Step
}

func NewGraph(steps []Step) (*Graph, error) {
	if len(steps) == 0 {
		return nil, definitionErrorf("", "", "definition has no steps")
	}

	g := &Graph{
		exerciseTypeID: steps[0].ExerciseTypeID,
		rows:           make(map[string][]Step),
	}

	firsts := map[string]struct{}{}
	for i, s := range steps {
		id := strings.TrimSpace(s.StepID)
		if id == "" {
			return nil, definitionErrorf(g.exerciseTypeID, "", "row %d has an empty step id", i)
		}
		s.StepID = id
		if err := checkAmount(g.exerciseTypeID, id, "score", s.Score); err != nil {
			return nil, err
		}
		if err := checkAmount(g.exerciseTypeID, id, "weight", s.Weight); err != nil {
			return nil, err
		}

		if _, seen := g.rows[id]; !seen {
			g.order = append(g.order, id)
		}
		g.rows[id] = append(g.rows[id], s)
		g.all = append(g.all, s)

		if s.IsFirstStep {
			if _, ok := firsts[id]; !ok && g.firstStepID != "" {
				return nil, definitionErrorf(g.exerciseTypeID, id,
					"more than one first step (%q and %q)", g.firstStepID, id)
			}
			firsts[id] = struct{}{}
			g.firstStepID = id
		}
	}

	if g.firstStepID == "" {
		return nil, definitionErrorf(g.exerciseTypeID, "", "no step is marked as first step")
	}

	return g, nil
}

// checkAmount rejects score and weight values that are negative or not finite.
func checkAmount(exerciseTypeID, stepID, field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return definitionErrorf(exerciseTypeID, stepID, "%s must be a finite non-negative number, got %v", field, *v)
	}
	return nil
}

func (g *Graph) ExerciseTypeID() string { return g.exerciseTypeID }

func (g *Graph) FirstStepID() string { return g.firstStepID }

// RowsFor returns the rows of a step in definition order.
func (g *Graph) RowsFor(stepID string) []Step { return g.rows[stepID] }

func (g *Graph) Has(stepID string) bool {
	_, ok := g.rows[stepID]
	return ok
}

// Rows returns every row in definition order.
func (g *Graph) Rows() []Step {
	out := make([]Step, len(g.all))
	copy(out, g.all)
	return out
}

// StepIDs returns the distinct step ids in first-seen order.
func (g *Graph) StepIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Graph) IsHint(row Step) bool { return row.IsHint() }

func (g *Graph) IsTerminal(row Step) bool { return row.IsTerminal() }

// IsHintStep reports whether every row of the step is a hint.
func (g *Graph) IsHintStep(stepID string) bool {
	rows := g.rows[stepID]
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !r.IsHint() {
			return false
		}
	}
	return true
}
