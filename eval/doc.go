// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package eval binds layout content to live data.
//
// Text and icon keys may contain {{path}} placeholders; visibility
// conditions are tiny expressions over the same paths. Both are resolved
// through a Provider, which the data layer implements. The evaluator knows
// nothing about geometry.
//
//	store := eval.NewStore()
//	store.Set("weather.temp", eval.Float(21.46))
//	s, err := eval.Substitute("{{weather.temp}}°C", store) // "21.5°C"
//
// Unresolvable paths substitute as empty and are reported as
// *VariableNotFoundError alongside the degraded text, so callers choose
// between skipping the element and drawing what resolved.
package eval
