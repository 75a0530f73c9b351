// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

func TestParseKind(t *testing.T) {
	kind, err := record.ParseKind(" Training_Resource ")
	require.NoError(t, err)
	assert.Equal(t, record.KindTrainingResource, kind)

	_, err = record.ParseKind("catalogue")
	assert.True(t, apperr.IsValidation(err))
}

func TestKind_Dependents(t *testing.T) {
	assert.ElementsMatch(t,
		[]record.Kind{record.KindService, record.KindTool, record.KindTrainingResource, record.KindInteroperabilityRecord},
		record.KindProvider.Dependents())
	assert.ElementsMatch(t,
		[]record.Kind{record.KindDatasource, record.KindHelpdesk, record.KindMonitoring},
		record.KindService.Dependents())
	assert.Empty(t, record.KindTool.Dependents())
	assert.Equal(t, "guidelines/", record.KindInteroperabilityRecord.PathSegment())
}

func TestAppendEvent_Monotonic(t *testing.T) {
	r := &record.Record{}
	now := time.UnixMilli(1_700_000_000_000)

	first := r.AppendEvent(record.NewEvent(record.EventOnboard, record.ActionRegistered, record.Actor{}, "", now))
	second := r.AppendEvent(record.NewEvent(record.EventOnboard, record.ActionApproved, record.Actor{}, "", now))
	third := r.AppendEvent(record.NewEvent(record.EventUpdate, record.ActionActivated, record.Actor{}, "", now.Add(-time.Hour)))

	assert.Less(t, first.Date, second.Date)
	assert.Less(t, second.Date, third.Date)
	require.Len(t, r.EventLog, 3)

	require.NotNil(t, r.LatestOnboardingEvent)
	assert.Equal(t, record.ActionApproved, r.LatestOnboardingEvent.Action)
	require.NotNil(t, r.LatestUpdateEvent)
	assert.Equal(t, record.ActionActivated, r.LatestUpdateEvent.Action)
	assert.Nil(t, r.LatestAuditEvent)
}

func TestNormalizeEvents(t *testing.T) {
	r := &record.Record{EventLog: []record.Event{
		event(record.EventAudit, record.ActionValid, 30),
		event(record.EventOnboard, record.ActionRegistered, 10),
		event(record.EventUpdate, record.ActionUpdated, 20),
	}}

	r.NormalizeEvents()

	assert.Equal(t, int64(10), r.EventLog[0].Date)
	assert.Equal(t, int64(30), r.EventLog[2].Date)
	require.NotNil(t, r.LatestAuditEvent)
	assert.Equal(t, int64(30), r.LatestAuditEvent.Date)
}

func TestClone_Independent(t *testing.T) {
	original := &record.Record{
		ID:          "svc-1",
		References:  record.References{Related: []string{"a"}},
		Identifiers: record.Identifiers{AlternativeIdentifiers: []record.AlternativeIdentifier{{Type: "DOI", Value: "10.1/x"}}},
		Payload:     json.RawMessage(`{"a":1}`),
	}

	clone := original.Clone()
	clone.References.Related[0] = "b"
	clone.Identifiers.AlternativeIdentifiers[0].Value = "changed"
	clone.AppendEvent(event(record.EventUpdate, record.ActionUpdated, 1))

	assert.Equal(t, "a", original.References.Related[0])
	assert.Equal(t, "10.1/x", original.Identifiers.AlternativeIdentifiers[0].Value)
	assert.Empty(t, original.EventLog)
}

func TestSameState(t *testing.T) {
	a := &record.Record{Status: record.StatusApproved, Active: true, Payload: json.RawMessage(`{"x":1,"y":2}`)}
	b := a.Clone()
	b.Payload = json.RawMessage(`{ "y": 2, "x": 1 }`)
	b.AppendEvent(event(record.EventUpdate, record.ActionUpdated, 1))
	assert.True(t, record.SameState(a, b))

	b.Suspended = true
	assert.False(t, record.SameState(a, b))
}

func TestIdentifiers_PID(t *testing.T) {
	identifiers := record.Identifiers{AlternativeIdentifiers: []record.AlternativeIdentifier{
		{Type: "DOI", Value: "10.1/x"},
		{Type: "EOSC PID", Value: "21.T15999/abc"},
	}}

	pid, ok := identifiers.PID()
	assert.True(t, ok)
	assert.Equal(t, "21.T15999/abc", pid.Value)

	_, ok = record.Identifiers{}.PID()
	assert.False(t, ok)
}
