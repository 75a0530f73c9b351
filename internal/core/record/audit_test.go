// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
)

func event(eventType record.EventType, action record.ActionType, date int64) record.Event {
	return record.Event{Type: eventType, Action: action, Date: date}
}

func TestClassifyAudit(t *testing.T) {
	tests := []struct {
		name     string
		log      []record.Event
		expected record.AuditState
	}{
		{"nil log", nil, record.AuditNotAudited},
		{"empty log", []record.Event{}, record.AuditNotAudited},
		{
			"no audit event",
			[]record.Event{event(record.EventOnboard, record.ActionRegistered, 1), event(record.EventUpdate, record.ActionUpdated, 2)},
			record.AuditNotAudited,
		},
		{
			"valid and untouched",
			[]record.Event{event(record.EventOnboard, record.ActionRegistered, 1), event(record.EventAudit, record.ActionValid, 2)},
			record.AuditValidAndNotUpdated,
		},
		{
			"valid then updated",
			[]record.Event{event(record.EventAudit, record.ActionValid, 2), event(record.EventUpdate, record.ActionUpdated, 3)},
			record.AuditValidAndUpdated,
		},
		{
			"invalid then updated",
			[]record.Event{event(record.EventAudit, record.ActionInvalid, 2), event(record.EventOnboard, record.ActionApproved, 5)},
			record.AuditInvalidAndUpdated,
		},
		{
			"invalid and untouched",
			[]record.Event{event(record.EventUpdate, record.ActionUpdated, 1), event(record.EventAudit, record.ActionInvalid, 2)},
			record.AuditInvalidAndNotUpdated,
		},
		{
			"same millisecond is not an update",
			[]record.Event{event(record.EventAudit, record.ActionValid, 4), event(record.EventUpdate, record.ActionUpdated, 4)},
			record.AuditValidAndNotUpdated,
		},
		{
			"latest audit wins regardless of order",
			[]record.Event{event(record.EventAudit, record.ActionValid, 9), event(record.EventUpdate, record.ActionUpdated, 5), event(record.EventAudit, record.ActionInvalid, 3)},
			record.AuditValidAndNotUpdated,
		},
		{
			"move events do not count as updates",
			[]record.Event{event(record.EventAudit, record.ActionInvalid, 1), event(record.EventMove, record.ActionMoved, 2)},
			record.AuditInvalidAndNotUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, record.ClassifyAudit(tt.log))
		})
	}
}

/*
TestClassifyAudit_Totality enumerates every log of up to three events drawn
from a small alphabet and checks that the verdict is always one of the five
states, and NotAudited exactly when no Audit event is present.
*/
func TestClassifyAudit_Totality(t *testing.T) {
	alphabet := []record.Event{
		event(record.EventOnboard, record.ActionRegistered, 0),
		event(record.EventUpdate, record.ActionUpdated, 0),
		event(record.EventAudit, record.ActionValid, 0),
		event(record.EventAudit, record.ActionInvalid, 0),
		event(record.EventMove, record.ActionMoved, 0),
	}

	valid := map[record.AuditState]bool{
		record.AuditNotAudited:           true,
		record.AuditValidAndUpdated:      true,
		record.AuditValidAndNotUpdated:   true,
		record.AuditInvalidAndUpdated:    true,
		record.AuditInvalidAndNotUpdated: true,
	}

	var walk func(log []record.Event)
	walk = func(log []record.Event) {
		state := record.ClassifyAudit(log)
		assert.True(t, valid[state])

		hasAudit := false
		for _, e := range log {
			hasAudit = hasAudit || e.Type == record.EventAudit
		}
		assert.Equal(t, !hasAudit, state == record.AuditNotAudited)

		if len(log) == 3 {
			return
		}
		for _, next := range alphabet {
			next.Date = int64(len(log) + 1)
			walk(append(append([]record.Event{}, log...), next))
		}
	}
	walk(nil)
}

func TestParseAuditState(t *testing.T) {
	state, err := record.ParseAuditState("valid_and_updated")
	require.NoError(t, err)
	assert.Equal(t, record.AuditValidAndUpdated, state)

	_, err = record.ParseAuditState("mostly_fine")
	assert.Error(t, err)
}
