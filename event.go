// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package epdcal

import (
	"fmt"

	"github.com/AmnesiaBeing/epdcal/eval"
)

// EventKind tags an Event.
type EventKind uint8

const (
	// EventFullRefresh redraws everything with a full panel refresh.
	EventFullRefresh EventKind = iota + 1
	// EventPartialRefresh redraws what changed, optionally forcing one
	// region into the update.
	EventPartialRefresh
	// EventUpdateComponent publishes new values for one data component and
	// redraws the regions that show them.
	EventUpdateComponent
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventFullRefresh:
		return "FullRefresh"
	case EventPartialRefresh:
		return "PartialRefresh"
	case EventUpdateComponent:
		return "UpdateComponent"
	default:
		return "Unknown"
	}
}

// Event is one request processed by the engine task.
type Event struct {
	Kind EventKind
	// Target is the region of a partial refresh or the component of an
	// update. An empty region lets the frame diff decide.
	Target string
	// Data holds the component values of an update, keyed relative to the
	// component ("day" for "date.day").
	Data map[string]eval.Value
}

// FullRefresh returns a full-refresh request.
func FullRefresh() Event {
	return Event{Kind: EventFullRefresh}
}

// PartialRefresh returns a partial-refresh request. region may be empty.
func PartialRefresh(region string) Event {
	return Event{Kind: EventPartialRefresh, Target: region}
}

// UpdateComponent returns a data update for component.
func UpdateComponent(component string, data map[string]eval.Value) Event {
	return Event{Kind: EventUpdateComponent, Target: component, Data: data}
}

func (e Event) String() string {
	if e.Target == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Target)
}
