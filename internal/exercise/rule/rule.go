package rule

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const Default = "depth > 1"

// Compiled is a validated helper-classification rule.
type Compiled struct {
	Source  string
	program *vm.Program
}

func Compile(rule string) (*Compiled, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		rule = Default
	}

	if err := Validate(rule); err != nil {
		return nil, fmt.Errorf("invalid classification rule %q: %w", rule, err)
	}

	program, err := expr.Compile(rule, expr.Env(map[string]any{"depth": 0}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile classification rule %q: %w", rule, err)
	}

	return &Compiled{Source: rule, program: program}, nil
}

func Eval(rule string, vars map[string]any) (bool, error) {
	c, err := Compile(rule)
	if err != nil {
		return false, err
	}
	return EvalCompiled(c, vars)
}

func EvalCompiled(c *Compiled, vars map[string]any) (bool, error) {
	if c == nil || c.program == nil {
		return false, fmt.Errorf("classification rule is not compiled")
	}

	out, err := expr.Run(c.program, vars)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rule must evaluate to bool (got %T)", out)
	}

	return b, nil
}
