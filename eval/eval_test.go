// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package eval

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testStore() *Store {
	s := NewStore()
	s.Set("date.day", Int(16))
	s.Set("date.weekday", String("Friday"))
	s.Set("weather.temp", Float(21.46))
	s.Set("weather.cold", Float(-3))
	s.Set("net.online", Bool(true))
	s.Set("net.ssid", String(""))
	s.Set("ui.key", String("day"))
	s.Set("label.day", String("Today"))
	return s
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Int(-42), "-42"},
		{Float(21.46), "21.5"},
		{Float(3), "3.0"},
		{String("abc"), "abc"},
		{Value{}, ""},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	s := testStore()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"int", "Day {{date.day}}", "Day 16"},
		{"float one decimal", "{{weather.temp}}°C", "21.5°C"},
		{"spaces in braces", "{{ date.weekday }}", "Friday"},
		{"several", "{{date.weekday}}, {{date.day}}", "Friday, 16"},
		{"bool", "online={{net.online}}", "online=true"},
		{"nested path", "{{label.{{ui.key}}}}", "Today"},
		{"single braces are literal", "{x}", "{x}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.in, s)
			if err != nil {
				t.Fatalf("Substitute(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubstituteMissing(t *testing.T) {
	got, err := Substitute("a{{nope.x}}b{{date.day}}c{{nope.y}}", testStore())
	if got != "ab16c" {
		t.Errorf("degraded text = %q, want %q", got, "ab16c")
	}
	if !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("error = %v, want ErrVariableNotFound", err)
	}
	var vnf *VariableNotFoundError
	if !errors.As(err, &vnf) || vnf.Path != "nope.x" {
		t.Errorf("errors.As() path = %v, want nope.x", vnf)
	}
}

func TestSubstituteSyntax(t *testing.T) {
	for _, in := range []string{"{{date.day", "date.day}}", "{{}}", "{{a}} }}", "{{{{a}}"} {
		t.Run(in, func(t *testing.T) {
			if _, err := Substitute(in, testStore()); !errors.Is(err, ErrSyntax) {
				t.Errorf("Substitute(%q) error = %v, want ErrSyntax", in, err)
			}
		})
	}
}

func TestSubstituteTooLong(t *testing.T) {
	s := NewStore()
	s.Set("big", String(strings.Repeat("x", MaxContentLen)))
	if _, err := Substitute("+{{big}}", s); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("error = %v, want ErrContentTooLong", err)
	}
	if _, err := Substitute(strings.Repeat("y", MaxContentLen+1), s); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("literal error = %v, want ErrContentTooLong", err)
	}
}

func TestSubstituteNormalizes(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	got, err := Substitute("cafe\u0301", NewStore())
	if err != nil {
		t.Fatal(err)
	}
	if got != "caf\u00e9" {
		t.Errorf("Substitute() = %q, want NFC form", got)
	}
}

func TestProviderError(t *testing.T) {
	boom := errors.New("sensor offline")
	p := ProviderFunc(func(string) (Value, error) { return Value{}, boom })
	got, err := Substitute("[{{x}}]", p)
	if got != "[]" {
		t.Errorf("degraded text = %q", got)
	}
	if !errors.Is(err, ErrVariableNotFound) || !errors.Is(err, boom) {
		t.Errorf("error = %v, want both ErrVariableNotFound and cause", err)
	}
}

func TestPaths(t *testing.T) {
	got, err := Paths("{{date.day}}/{{ weather.temp }} {{label.{{ui.key}}}}")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"date.day", "weather.temp", "label.{{ui.key}}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}
}

func TestCondition(t *testing.T) {
	s := testStore()
	tests := []struct {
		expr        string
		want        bool
		unsupported bool
	}{
		{"", true, false},
		{"true", true, false},
		{" false ", false, false},
		{"{{date.weekday}} == 'Friday'", true, false},
		{"{{date.weekday}} == \"Monday\"", false, false},
		{"date.weekday == Friday", true, false},
		{"{{date.day}} == 16", true, false},
		{"{{date.day}} == 16.0", true, false},
		{"{{weather.cold}} == -3", true, false},
		{"{{net.online}} == true", true, false},
		{"{{net.online}} == false", false, false},
		{"{{date.weekday}} != ''", true, false},
		{"{{net.ssid}} != ''", false, false},
		{"{{missing.path}} != ''", false, false},
		{"{{missing.path}} == 'x'", false, false},
		{"{{date.day}} > 3", true, true},
		{"{{date.day}} != 3", true, true},
		{"{{date.weekday}} == 'Fri", true, true},
		{"whatever", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Condition(tt.expr, s)
			if got != tt.want {
				t.Errorf("Condition(%q) = %v, want %v", tt.expr, got, tt.want)
			}
			if gotUnsupported := errors.Is(err, ErrUnsupportedCondition); gotUnsupported != tt.unsupported {
				t.Errorf("Condition(%q) error = %v, unsupported want %v", tt.expr, err, tt.unsupported)
			}
		})
	}
}

func TestNilProvider(t *testing.T) {
	got, err := Substitute("day {{date.day}}", nil)
	if got != "day " || !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("Substitute(nil provider) = %q, %v", got, err)
	}
	for _, expr := range []string{"{{a}} == 1", "{{a}} != ''"} {
		if ok, err := Condition(expr, nil); ok || err != nil {
			t.Errorf("Condition(%q, nil) = %v, %v, want false", expr, ok, err)
		}
	}
}

func TestConditionPath(t *testing.T) {
	tests := []struct {
		expr   string
		want   string
		wantOK bool
	}{
		{"{{weather.code}} != ''", "weather.code", true},
		{"alert.active == true", "alert.active", true},
		{"true", "", false},
		{"{{a}} > 3", "", false},
		{"{{a}}{{b}} == 1", "", false},
	}
	for _, tt := range tests {
		got, ok := ConditionPath(tt.expr)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ConditionPath(%q) = %q, %v, want %q, %v", tt.expr, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore()
	s.Update("weather", map[string]Value{
		"temp":         Float(3.5),
		"weather.code": String("rain"),
	})
	if v, err := s.Value("weather.temp"); err != nil || v.String() != "3.5" {
		t.Errorf("weather.temp = %v, %v", v, err)
	}
	if v, err := s.Value("weather.code"); err != nil || v.String() != "rain" {
		t.Errorf("weather.code = %v, %v", v, err)
	}
	s.Delete("weather.code")
	if _, err := s.Value("weather.code"); !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("after Delete error = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set("k", Int(int64(j)))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = Substitute("{{k}}", s)
			}
		}()
	}
	wg.Wait()
}
