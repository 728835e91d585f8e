// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package eval

import "errors"

// Sentinel errors for the eval package.
var (
	// ErrVariableNotFound is matched by every *VariableNotFoundError.
	ErrVariableNotFound = errors.New("eval: variable not found")

	// ErrSyntax is returned for unbalanced or empty placeholders.
	ErrSyntax = errors.New("eval: placeholder syntax error")

	// ErrContentTooLong is returned when substituted text exceeds MaxContentLen.
	ErrContentTooLong = errors.New("eval: content too long")

	// ErrUnsupportedCondition reports a condition the evaluator does not
	// understand. The element is treated as visible.
	ErrUnsupportedCondition = errors.New("eval: unsupported condition")
)

// VariableNotFoundError reports a path the provider could not resolve.
type VariableNotFoundError struct {
	Path string
}

func (e *VariableNotFoundError) Error() string {
	return "eval: variable not found: " + e.Path
}

// Is makes errors.Is(err, ErrVariableNotFound) match.
func (e *VariableNotFoundError) Is(target error) bool {
	return target == ErrVariableNotFound
}
