// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package eval

import (
	"strconv"
	"strings"
	"sync"
)

// Kind is the type of a Value.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	default:
		return "Invalid"
	}
}

// Value is a named value published by a data provider: a boolean, integer,
// float or string. The zero Value is invalid and formats as "".
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the value type.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload.
func (v Value) Float() float64 { return v.f }

// String formats the value for substitution. Floats use one decimal place.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', 1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Provider resolves placeholder paths to values.
// Implementations must not block; the renderer performs one lookup per
// placeholder while drawing.
type Provider interface {
	// Value returns the value at path, or an error matching
	// ErrVariableNotFound.
	Value(path string) (Value, error)
}

func lookup(p Provider, path string) (Value, error) {
	if p == nil {
		return Value{}, &VariableNotFoundError{Path: path}
	}
	return p.Value(path)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(path string) (Value, error)

// Value implements Provider.
func (f ProviderFunc) Value(path string) (Value, error) { return f(path) }

// Updater accepts a batch of values published by one component.
type Updater interface {
	Update(component string, data map[string]Value)
}

// Store is a concurrency-safe map-backed Provider. Data sources write to it
// from their own goroutines; the renderer only reads.
type Store struct {
	mu     sync.RWMutex
	values map[string]Value
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Value implements Provider.
func (s *Store) Value(path string) (Value, error) {
	s.mu.RLock()
	v, ok := s.values[path]
	s.mu.RUnlock()
	if !ok {
		return Value{}, &VariableNotFoundError{Path: path}
	}
	return v, nil
}

// Set stores a value at path.
func (s *Store) Set(path string, v Value) {
	s.mu.Lock()
	s.values[path] = v
	s.mu.Unlock()
}

// Delete removes path.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	delete(s.values, path)
	s.mu.Unlock()
}

// Update implements Updater. Each key is stored as "component.key"; keys
// that already carry the component prefix are stored unchanged.
func (s *Store) Update(component string, data map[string]Value) {
	prefix := component + "."
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range data {
		if component != "" && !strings.HasPrefix(k, prefix) {
			k = prefix + k
		}
		s.values[k] = v
	}
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
