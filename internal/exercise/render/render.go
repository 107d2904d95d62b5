package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

const graphName = "exercise"

type options struct {
	rankdir          string
	highlightPrimary bool
}

type Option func(*options)

// WithRankDir overrides the layout direction (TB by default).
func WithRankDir(dir string) Option {
	return func(o *options) {
		o.rankdir = dir
	}
}

// WithPrimaryHighlight draws primary-path edges bold and helper steps dashed.
func WithPrimaryHighlight(on bool) Option {
	return func(o *options) {
		o.highlightPrimary = on
	}
}

// Graph builds the DOT graph of a compiled exercise: one node per state, one
// edge per transition, labelled with its trigger.
func Graph(m *exercise.Model, opts ...Option) (*gographviz.Graph, error) {
	if m == nil {
		return nil, fmt.Errorf("model is nil")
	}

	o := options{rankdir: "TB"}
	for _, opt := range opts {
		opt(&o)
	}

	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return nil, err
	}
	if err := g.SetDir(true); err != nil {
		return nil, err
	}
	if err := g.AddAttr(graphName, "rankdir", o.rankdir); err != nil {
		return nil, fmt.Errorf("graph attrs: %w", err)
	}
	if err := g.AddAttr(graphName, "nodesep", "1"); err != nil {
		return nil, fmt.Errorf("graph attrs: %w", err)
	}

	for _, state := range m.States() {
		attrs := map[string]string{
			"shape":     "circle",
			"fontname":  "arial",
			"style":     "filled",
			"fillcolor": "turquoise",
			"label":     quote(state),
		}
		if o.highlightPrimary && m.ClassOf(state) == exercise.Helper && m.Graph.Has(state) {
			attrs["style"] = quote("filled,dashed")
		}
		if err := g.AddNode(graphName, id(state), attrs); err != nil {
			return nil, fmt.Errorf("add node %q: %w", state, err)
		}
	}

	onPath := primaryEdges(m.PrimaryPath)
	for _, t := range m.Transitions() {
		attrs := map[string]string{
			"fontname": "arial",
			"color":    "blue",
			"label":    quote(t.Trigger),
		}
		if o.highlightPrimary {
			if _, ok := onPath[t.Source+"\x00"+t.Dest]; ok && t.Interpretation != exercise.Incorrect {
				attrs["style"] = "bold"
			}
		}
		if err := g.AddEdge(id(t.Source), id(t.Dest), true, attrs); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", t.Source, t.Dest, err)
		}
	}

	return g, nil
}

// DOT renders the model as DOT source.
func DOT(m *exercise.Model, opts ...Option) (string, error) {
	g, err := Graph(m, opts...)
	if err != nil {
		return "", err
	}
	return g.String(), nil
}

func primaryEdges(path exercise.PrimaryPath) map[string]struct{} {
	out := map[string]struct{}{}
	for i := 0; i+1 < len(path); i++ {
		out[path[i]+"\x00"+path[i+1]] = struct{}{}
	}
	if len(path) > 0 {
		out[exercise.StateStart+"\x00"+path[0]] = struct{}{}
		out[path[len(path)-1]+"\x00"+exercise.StateEnd] = struct{}{}
	}
	return out
}

var (
	plainIDRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numeralIDRe = regexp.MustCompile(`^-?(\.[0-9]+|[0-9]+(\.[0-9]*)?)$`)
)

var dotKeywords = map[string]struct{}{
	"node": {}, "edge": {}, "graph": {}, "digraph": {}, "subgraph": {}, "strict": {},
}

// id returns a DOT identifier for a state name, quoting when needed.
func id(s string) string {
	if _, kw := dotKeywords[strings.ToLower(s)]; kw {
		return quote(s)
	}
	if plainIDRe.MatchString(s) || numeralIDRe.MatchString(s) {
		return s
	}
	return quote(s)
}

func quote(s string) string {
	return strconv.Quote(s)
}
