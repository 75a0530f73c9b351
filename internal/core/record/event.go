// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record

import (
	"cmp"
	"slices"
	"time"
)

// # Event Log

// EventType groups events by the lifecycle phase that produced them.
type EventType string

const (
	EventDraft   EventType = "draft"
	EventOnboard EventType = "onboard"
	EventUpdate  EventType = "update"
	EventAudit   EventType = "audit"
	EventMove    EventType = "move"
)

// ActionType is the concrete action recorded by an event.
type ActionType string

const (
	ActionCreated     ActionType = "created"
	ActionRegistered  ActionType = "registered"
	ActionApproved    ActionType = "approved"
	ActionRejected    ActionType = "rejected"
	ActionUpdated     ActionType = "updated"
	ActionActivated   ActionType = "activated"
	ActionDeactivated ActionType = "deactivated"
	ActionSuspended   ActionType = "suspended"
	ActionUnsuspended ActionType = "unsuspended"
	ActionValid       ActionType = "valid"
	ActionInvalid     ActionType = "invalid"
	ActionMoved       ActionType = "moved"
)

// Actor is the user an event is attributed to.
type Actor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event is one immutable entry in a record's history. Date is in epoch
// milliseconds.
type Event struct {
	Type    EventType  `json:"type"`
	Action  ActionType `json:"action_type"`
	Date    int64      `json:"date"`
	Actor   Actor      `json:"actor"`
	Comment string     `json:"comment,omitempty"`
}

// NewEvent builds an event dated at now.
func NewEvent(eventType EventType, action ActionType, actor Actor, comment string, now time.Time) Event {
	return Event{
		Type:    eventType,
		Action:  action,
		Date:    now.UnixMilli(),
		Actor:   actor,
		Comment: comment,
	}
}

/*
AppendEvent adds event to the log and recomputes the latest-event pointers.

Description: Dates are strictly increasing per record. An event dated at or
before the newest entry is moved to one millisecond after it, so two events
appended within the same millisecond still order deterministically.

Parameters:
  - event: Event

Returns:
  - Event: The event as stored, with its final date
*/
func (r *Record) AppendEvent(event Event) Event {
	if last := len(r.EventLog); last > 0 && event.Date <= r.EventLog[last-1].Date {
		event.Date = r.EventLog[last-1].Date + 1
	}

	r.EventLog = append(r.EventLog, event)
	r.refreshLatest()
	return event
}

// NormalizeEvents sorts a log loaded from storage by date and recomputes the
// latest-event pointers. The sort is stable, so equal dates keep their order.
func (r *Record) NormalizeEvents() {
	slices.SortStableFunc(r.EventLog, func(a, b Event) int {
		return cmp.Compare(a.Date, b.Date)
	})
	r.refreshLatest()
}

func (r *Record) refreshLatest() {
	r.LatestOnboardingEvent = latestOf(r.EventLog, EventOnboard)
	r.LatestUpdateEvent = latestOf(r.EventLog, EventUpdate)
	r.LatestAuditEvent = latestOf(r.EventLog, EventAudit)
}

// latestOf returns a copy of the greatest-dated event whose type is one of
// types. Ties go to the later position in the log.
func latestOf(log []Event, types ...EventType) *Event {
	var latest *Event
	for i := range log {
		if !slices.Contains(types, log[i].Type) {
			continue
		}
		if latest == nil || log[i].Date >= latest.Date {
			event := log[i]
			latest = &event
		}
	}
	return latest
}
