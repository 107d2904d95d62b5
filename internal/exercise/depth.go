package exercise

// DepthMap holds the BFS distance of each step from the primary path.
// Primary steps, and steps the search never reaches, have depth 0.
type DepthMap map[string]int

func (d DepthMap) Of(stepID string) int { return d[stepID] }

// IndexDepth labels every step reachable from the primary path, following
// all branches, with its hop distance from the nearest primary step.
func IndexDepth(g *Graph, primary PrimaryPath) DepthMap {
	depth := make(DepthMap, len(g.order))
	onPath := make(map[string]struct{}, len(primary))
	queue := make([]string, 0, len(primary))

	for _, id := range primary {
		if _, dup := onPath[id]; dup {
			continue
		}
		onPath[id] = struct{}{}
		depth[id] = 0
		queue = append(queue, id)
	}

	visited := make(map[string]struct{}, len(g.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, row := range g.RowsFor(current) {
			next := row.NextStepID()
			if next == "" {
				continue
			}
			if _, ok := onPath[next]; ok {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			depth[next] = depth[current] + 1
			queue = append(queue, next)
		}
	}

	// unreached steps default to primary
	for _, id := range g.order {
		if _, ok := depth[id]; !ok {
			depth[id] = 0
		}
	}

	return depth
}
