package rule

import (
	"fmt"
	"strings"
	"unicode"
)

var allowedIdents = map[string]struct{}{
	"depth": {},
	"and":   {},
	"or":    {},
	"not":   {},
	"true":  {},
	"false": {},
}

func Validate(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return fmt.Errorf("empty rule")
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\', '"', '\'', '`', ','}
	for _, ch := range illegalChars {
		if strings.ContainsRune(rule, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	if strings.Contains(rule, ".") {
		return fmt.Errorf("dot access is not allowed")
	}

	illegalOps := []string{"+", "-", "*", "/", "%", "^"}
	for _, op := range illegalOps {
		if strings.Contains(rule, op) {
			return fmt.Errorf("arithmetic operator %q is not allowed", op)
		}
	}

	for i := 0; i < len(rule); {
		r := rune(rule[i])
		if !unicode.IsLetter(r) && r != '_' {
			i++
			continue
		}
		j := i
		for j < len(rule) && (unicode.IsLetter(rune(rule[j])) || unicode.IsDigit(rune(rule[j])) || rule[j] == '_') {
			j++
		}
		ident := rule[i:j]
		if _, ok := allowedIdents[ident]; !ok {
			return fmt.Errorf("unknown identifier %q (only depth is available)", ident)
		}
		k := j
		for k < len(rule) && unicode.IsSpace(rune(rule[k])) {
			k++
		}
		if k < len(rule) && rule[k] == '(' {
			return fmt.Errorf("function calls are not allowed (found %q(...))", ident)
		}
		i = j
	}

	return nil
}
