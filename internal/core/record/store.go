// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record

import (
	"context"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

// Filter narrows an index query. Zero values mean "any".
type Filter struct {
	Kind        Kind     `json:"kind"`
	CatalogueID string   `json:"catalogue_id,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	Keyword     string   `json:"keyword,omitempty"`
	Status      []Status `json:"status,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	Suspended   *bool    `json:"suspended,omitempty"`
	Draft       *bool    `json:"draft,omitempty"`
	Published   *bool    `json:"published,omitempty"`
}

// Repository persists records keyed by (kind, catalogue, id).
//
// Writes are optimistic: Update succeeds only when the stored version equals
// the version carried by the record, and bumps it. A stale write fails with
// a Conflict error.
type Repository interface {
	Get(context context.Context, key Key) (*Record, error)
	Exists(context context.Context, key Key) (bool, error)
	Create(context context.Context, r *Record) error
	Update(context context.Context, r *Record) error
	Delete(context context.Context, key Key) error

	// ListByOwner returns every record of kind whose owner reference is owner,
	// ordered by id.
	ListByOwner(context context.Context, kind Kind, catalogueID, owner string) ([]*Record, error)

	// Search runs an index query and returns one window ordered by id.
	Search(context context.Context, filter Filter, from, quantity int) (pagination.Envelope[*Record], error)
}
