// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

// MemoryRepository is a process-local [Repository] used by tests and by
// single-node development runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[Key]*Record
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[Key]*Record)}
}

func (repository *MemoryRepository) Get(_ context.Context, key Key) (*Record, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	stored, ok := repository.records[key]
	if !ok {
		return nil, apperr.NotFound(string(key.Kind))
	}
	return stored.Clone(), nil
}

func (repository *MemoryRepository) Exists(_ context.Context, key Key) (bool, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	_, ok := repository.records[key]
	return ok, nil
}

func (repository *MemoryRepository) Create(_ context.Context, r *Record) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := r.Key()
	if _, ok := repository.records[key]; ok {
		return apperr.Conflict(string(key.Kind) + " already exists: " + key.ID)
	}

	r.Version = 1
	repository.records[key] = r.Clone()
	return nil
}

func (repository *MemoryRepository) Update(_ context.Context, r *Record) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := r.Key()
	stored, ok := repository.records[key]
	if !ok {
		return apperr.NotFound(string(key.Kind))
	}
	if stored.Version != r.Version {
		return apperr.Conflict(string(key.Kind) + " was modified concurrently: " + key.ID)
	}

	r.Version++
	repository.records[key] = r.Clone()
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, key Key) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.records[key]; !ok {
		return apperr.NotFound(string(key.Kind))
	}
	delete(repository.records, key)
	return nil
}

func (repository *MemoryRepository) ListByOwner(_ context.Context, kind Kind, catalogueID, owner string) ([]*Record, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var matches []*Record
	for key, stored := range repository.records {
		if key.Kind == kind && key.CatalogueID == catalogueID && stored.References.Owner == owner {
			matches = append(matches, stored.Clone())
		}
	}

	sortByID(matches)
	return matches, nil
}

func (repository *MemoryRepository) Search(_ context.Context, filter Filter, from, quantity int) (pagination.Envelope[*Record], error) {
	repository.mu.RLock()
	var matches []*Record
	for _, stored := range repository.records {
		if filter.matches(stored) {
			matches = append(matches, stored)
		}
	}
	repository.mu.RUnlock()

	sortByID(matches)

	start, end := pagination.Window(len(matches), from, quantity)
	results := make([]*Record, 0, end-start)
	for _, match := range matches[start:end] {
		results = append(results, match.Clone())
	}

	return pagination.Envelope[*Record]{
		Total:   len(matches),
		From:    max(from, 0),
		To:      end,
		Results: results,
	}, nil
}

func (filter Filter) matches(r *Record) bool {
	switch {
	case filter.Kind != "" && r.Kind != filter.Kind:
		return false
	case filter.CatalogueID != "" && r.CatalogueID != filter.CatalogueID:
		return false
	case filter.Owner != "" && r.References.Owner != filter.Owner:
		return false
	case len(filter.Status) > 0 && !slices.Contains(filter.Status, r.Status):
		return false
	case filter.Active != nil && r.Active != *filter.Active:
		return false
	case filter.Suspended != nil && r.Suspended != *filter.Suspended:
		return false
	case filter.Draft != nil && r.Draft != *filter.Draft:
		return false
	case filter.Published != nil && r.Metadata.Published != *filter.Published:
		return false
	case filter.Keyword != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Keyword)):
		return false
	}
	return true
}

func sortByID(records []*Record) {
	slices.SortFunc(records, func(a, b *Record) int {
		if c := strings.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.CatalogueID, b.CatalogueID)
	})
}
