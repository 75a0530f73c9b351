// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package mirror_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/mirror"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Emit(ctx context.Context, topic string, payload any) {
	m.Called(ctx, topic, payload)
}

type fixture struct {
	records      *record.MemoryRepository
	publisher    *mockPublisher
	synchronizer *mirror.Synchronizer
}

func newFixture() *fixture {
	records := record.NewMemoryRepository()
	publisher := new(mockPublisher)
	publisher.On("Emit", mock.Anything, mock.Anything, mock.Anything).Return()

	rewriter := mirror.NewRewriter(records, "https://search.example.org/", "21.T15999")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		records:      records,
		publisher:    publisher,
		synchronizer: mirror.NewSynchronizer(records, rewriter, publisher, nil, logger),
	}
}

func approvedService(id string) *record.Record {
	return &record.Record{
		Kind:        record.KindService,
		ID:          id,
		CatalogueID: "eosc",
		Name:        "Service " + id,
		Status:      record.StatusApproved,
		Active:      true,
		References:  record.References{Owner: "prov-1"},
		Payload:     json.RawMessage(`{"description":"first"}`),
	}
}

func (f *fixture) store(t *testing.T, r *record.Record) *record.Record {
	t.Helper()
	require.NoError(t, f.records.Create(context.Background(), r))
	return r
}

func TestComputePublicID(t *testing.T) {
	r := approvedService("svc-123")

	publicID, err := mirror.ComputePublicID(r)
	require.NoError(t, err)
	assert.Equal(t, "eosc.svc-123", publicID)

	// Applying it to its own output is refused
	r.ID = publicID
	_, err = mirror.ComputePublicID(r)
	assert.True(t, apperr.IsValidation(err))

	_, err = mirror.ComputePublicID(&record.Record{ID: "x"})
	assert.True(t, apperr.IsValidation(err))
}

/*
TestCreate_Scenario mirrors an approved service, then checks that a second
mirroring attempt conflicts.
*/
func TestCreate_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.store(t, approvedService("svc-123"))

	created, err := f.synchronizer.Create(ctx, svc)
	require.NoError(t, err)

	assert.Equal(t, "eosc.svc-123", created.ID)
	assert.True(t, created.Metadata.Published)
	assert.Equal(t, "svc-123", created.Identifiers.OriginalID)

	pid, ok := created.Identifiers.PID()
	require.True(t, ok)
	assert.Contains(t, pid.Value, "21.T15999/")
	assert.Equal(t, "https://search.example.org/services/eosc.svc-123", pid.URL)

	// Private record untouched
	private, err := f.records.Get(ctx, svc.Key())
	require.NoError(t, err)
	assert.False(t, private.Metadata.Published)

	_, err = f.synchronizer.Create(ctx, svc)
	assert.True(t, apperr.IsConflict(err))

	f.publisher.AssertCalled(t, "Emit", mock.Anything, "service.create", mock.Anything)
	f.publisher.AssertNumberOfCalls(t, "Emit", 1)
}

func TestCreate_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	pending := approvedService("svc-p")
	pending.Status = record.StatusPending
	_, err := f.synchronizer.Create(ctx, pending)
	assert.True(t, apperr.IsValidation(err))

	draft := approvedService("svc-d")
	draft.Draft = true
	_, err = f.synchronizer.Create(ctx, draft)
	assert.True(t, apperr.IsValidation(err))

	public := approvedService("eosc.svc-x")
	public.Metadata.Published = true
	_, err = f.synchronizer.Create(ctx, public)
	assert.True(t, apperr.IsValidation(err))
}

func TestRewriteReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// prov-1 is public, prov-2 is not; svc-public has a mirror
	f.store(t, &record.Record{Kind: record.KindProvider, ID: "eosc.prov-1", CatalogueID: "eosc", Metadata: record.Metadata{Published: true}})
	f.store(t, &record.Record{Kind: record.KindService, ID: "eosc.svc-public", CatalogueID: "eosc", Metadata: record.Metadata{Published: true}})

	svc := approvedService("svc-1")
	svc.References = record.References{
		Owner:     "prov-1",
		Providers: []string{"prov-1", "prov-2"},
		Related:   []string{"svc-public", "svc-private"},
	}
	f.store(t, svc)

	created, err := f.synchronizer.Create(ctx, svc)
	require.NoError(t, err)

	assert.Equal(t, "eosc.prov-1", created.References.Owner)
	assert.Equal(t, []string{"eosc.prov-1", "prov-2"}, created.References.Providers)
	assert.Equal(t, []string{"eosc.svc-public", "svc-private"}, created.References.Related)

	// Rewriting happens on the mirror only
	assert.Equal(t, "prov-1", svc.References.Owner)
}

/*
TestUpdate_PreservesPID runs several synchronisations and checks that the PID
minted on creation never changes, while new identifiers accumulate.
*/
func TestUpdate_PreservesPID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.store(t, approvedService("svc-1"))

	created, err := f.synchronizer.Create(ctx, svc)
	require.NoError(t, err)
	originalPID, _ := created.Identifiers.PID()

	updates := []record.Identifiers{
		{},
		{AlternativeIdentifiers: []record.AlternativeIdentifier{{Type: "DOI", Value: "10.1/a"}}},
		{AlternativeIdentifiers: []record.AlternativeIdentifier{{Type: "EOSC PID", Value: "forged"}}},
		{AlternativeIdentifiers: []record.AlternativeIdentifier{{Type: "URL", Value: "https://x"}}},
	}

	var latest *record.Record
	for i, identifiers := range updates {
		svc.Identifiers = identifiers
		svc.Payload = json.RawMessage(`{"description":"update"}`)

		latest, err = f.synchronizer.Update(ctx, svc)
		require.NoError(t, err, "update %d", i)

		pid, ok := latest.Identifiers.PID()
		require.True(t, ok)
		assert.Equal(t, originalPID, pid, "update %d", i)
	}

	assert.Equal(t, "eosc.svc-1", latest.ID)
	assert.True(t, latest.Metadata.Published)
	assert.Equal(t, "svc-1", latest.Identifiers.OriginalID)
	assert.JSONEq(t, `{"description":"update"}`, string(latest.Payload))

	var types []string
	for _, identifier := range latest.Identifiers.AlternativeIdentifiers {
		types = append(types, identifier.Type)
	}
	assert.ElementsMatch(t, []string{"EOSC PID", "DOI", "URL"}, types)

	f.publisher.AssertNumberOfCalls(t, "Emit", 1+len(updates))
}

func TestUpdate_NotMirrored(t *testing.T) {
	f := newFixture()
	_, err := f.synchronizer.Update(context.Background(), approvedService("svc-1"))
	assert.True(t, apperr.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.store(t, approvedService("svc-1"))

	// Never mirrored: silent no-op
	require.NoError(t, f.synchronizer.Delete(ctx, svc))
	f.publisher.AssertNotCalled(t, "Emit", mock.Anything, "service.delete", mock.Anything)

	_, err := f.synchronizer.Create(ctx, svc)
	require.NoError(t, err)

	require.NoError(t, f.synchronizer.Delete(ctx, svc))
	exists, err := f.synchronizer.Exists(ctx, svc)
	require.NoError(t, err)
	assert.False(t, exists)
	f.publisher.AssertCalled(t, "Emit", mock.Anything, "service.delete", mock.Anything)
}
