package exercise

// PrimaryPath is the canonical all-correct route from the first step to a
// terminal step.
type PrimaryPath []string

func (p PrimaryPath) Contains(stepID string) bool {
	for _, id := range p {
		if id == stepID {
			return true
		}
	}
	return false
}

// AnalyzePath walks the correct branches and hint links from the first step
// and sums the score collected on the way.
func AnalyzePath(g *Graph) (PrimaryPath, float64, error) {
	current := g.FirstStepID()
	path := PrimaryPath{current}
	visited := map[string]struct{}{current: {}}
	score := 0.0

	for {
		rows := g.RowsFor(current)
		if len(rows) == 0 {
			return nil, 0, definitionErrorf(g.ExerciseTypeID(), current, "primary path reaches a step with no rows")
		}

		next := ""
		matched := false
		for _, row := range rows {
			switch {
			case row.IsTerminal():
				if v := row.ScoreValue(); v != 0 {
					score += v
				}
				return path, score, nil
			case row.PossibleAnswerNextStepID == "":
				next = row.StepNextStepID
			case row.AnswerInterpretation == Correct:
				next = row.PossibleAnswerNextStepID
				score += row.ScoreValue()
			default:
				continue
			}
			matched = true
			break
		}

		if !matched {
			return nil, 0, definitionErrorf(g.ExerciseTypeID(), current, "no hint link, correct branch or terminal row")
		}
		if _, seen := visited[next]; seen {
			return nil, 0, definitionErrorf(g.ExerciseTypeID(), next, "primary path revisits step (cycle)")
		}

		visited[next] = struct{}{}
		path = append(path, next)
		current = next
	}
}
