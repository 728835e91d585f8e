// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package eval

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition evaluates a visibility expression. Supported forms:
//
//	true | false
//	{{path}} == literal     literal may be 'quoted', "quoted" or bare
//	{{path}} != ''          existence test: resolved and non-empty
//
// The braces around path are optional. A path that does not resolve makes
// both comparisons false, as does a nil p. Any other expression is visible and reported with
// ErrUnsupportedCondition so the caller can log it.
func Condition(expr string, p Provider) (bool, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "", "true":
		return true, nil
	case "false":
		return false, nil
	}

	op := "=="
	i := strings.Index(expr, op)
	if i < 0 {
		op = "!="
		i = strings.Index(expr, op)
	}
	if i < 0 {
		return true, fmt.Errorf("%w: %q", ErrUnsupportedCondition, expr)
	}
	path, ok := conditionPath(expr[:i])
	if !ok {
		return true, fmt.Errorf("%w: %q", ErrUnsupportedCondition, expr)
	}
	lit, ok := conditionLiteral(expr[i+len(op):])
	if !ok {
		return true, fmt.Errorf("%w: %q", ErrUnsupportedCondition, expr)
	}

	if op == "!=" {
		if lit != "" {
			return true, fmt.Errorf("%w: %q", ErrUnsupportedCondition, expr)
		}
		v, err := lookup(p, path)
		if err != nil {
			return false, nil
		}
		return v.String() != "", nil
	}

	v, err := lookup(p, path)
	if err != nil {
		return false, nil
	}
	return valueEquals(v, lit), nil
}

// ConditionPath returns the path a condition reads, if it is one of the
// comparison forms Condition understands.
func ConditionPath(expr string) (string, bool) {
	expr = strings.TrimSpace(expr)
	i := strings.Index(expr, "==")
	if i < 0 {
		i = strings.Index(expr, "!=")
	}
	if i < 0 {
		return "", false
	}
	return conditionPath(expr[:i])
}

// conditionPath accepts "{{a.b}}" or "a.b".
func conditionPath(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, openDelim) && strings.HasSuffix(s, closeDelim) {
		s = strings.TrimSpace(s[len(openDelim) : len(s)-len(closeDelim)])
	}
	if s == "" || strings.ContainsAny(s, "{} \t'\"=!") {
		return "", false
	}
	return s, true
}

// conditionLiteral unquotes a single- or double-quoted literal, or returns
// a bare token.
func conditionLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') {
		if s[len(s)-1] != s[0] {
			return "", false
		}
		return s[1 : len(s)-1], true
	}
	if s == "" || strings.ContainsAny(s, " \t'\"{}=!") {
		return "", false
	}
	return s, true
}

// valueEquals compares a value with a literal. Numbers compare numerically
// so "3" equals Float(3.0); everything else compares formatted text.
func valueEquals(v Value, lit string) bool {
	switch v.Kind() {
	case KindInt:
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return v.Int() == n
		}
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return float64(v.Int()) == f
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return v.Float() == f
		}
	case KindBool:
		if b, err := strconv.ParseBool(lit); err == nil {
			return v.Bool() == b
		}
	}
	return v.String() == lit
}
