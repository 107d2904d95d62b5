package exercise

import "github.com/awmpietro/golang-exercise-scoring/internal/exercise/rule"

// Classifier decides whether a step at a given depth is scored as a helper.
type Classifier interface {
	IsHelper(depth int) (bool, error)
}

// DepthThreshold classifies steps deeper than Max as helpers. The default of
// 1 keeps one-hop detours off the primary path on primary credit.
type DepthThreshold struct {
	Max int
}

var DefaultClassifier Classifier = DepthThreshold{Max: 1}

func (d DepthThreshold) IsHelper(depth int) (bool, error) {
	return depth > d.Max, nil
}

// RuleClassifier evaluates a compiled expr rule against the step depth.
type RuleClassifier struct {
	Rule *rule.Compiled
}

func NewRuleClassifier(expression string) (*RuleClassifier, error) {
	compiled, err := rule.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &RuleClassifier{Rule: compiled}, nil
}

func (c *RuleClassifier) IsHelper(depth int) (bool, error) {
	return rule.EvalCompiled(c.Rule, map[string]any{"depth": depth})
}

func classify(c Classifier, depth int) (PathClass, error) {
	if c == nil {
		c = DefaultClassifier
	}
	helper, err := c.IsHelper(depth)
	if err != nil {
		return "", err
	}
	if helper {
		return Helper, nil
	}
	return Primary, nil
}
