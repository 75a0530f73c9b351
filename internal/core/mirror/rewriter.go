// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package mirror maintains the public, read-facing copies of approved records.

A mirror is keyed by "<catalogueId>.<id>" and carries published=true in its
metadata. It is created once, from then on refreshed from the private record
and never edited directly. References to other records are rewritten to
their public form only when those records are public themselves, and a
persistent identifier (PID) is minted on first mirroring and never changed.
*/
package mirror

import (
	"context"
	"slices"
	"strings"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/constants"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/uuid"
)

// # Identifier Rewriting

// ComputePublicID returns the public id of r. It refuses ids that already
// carry the catalogue prefix, so a mirror can never be mirrored again.
func ComputePublicID(r *record.Record) (string, error) {
	prefix := r.CatalogueID + constants.PublicIDSeparator
	if r.CatalogueID == "" {
		return "", apperr.ValidationError("record has no catalogue")
	}
	if strings.HasPrefix(r.ID, prefix) {
		return "", apperr.Validationf("%s %q already carries the public prefix %q", r.Kind, r.ID, prefix)
	}
	return prefix + r.ID, nil
}

// Rewriter rewrites references and manages persistent identifiers.
type Rewriter struct {
	records   record.Repository
	baseURL   string
	pidPrefix string
	newID     func() string
}

// NewRewriter constructs a [Rewriter]. PIDs are minted as
// "<pidPrefix>/<uuid>" and resolve to "<publicBaseURL>/<segment><publicId>".
func NewRewriter(records record.Repository, publicBaseURL, pidPrefix string) *Rewriter {
	return &Rewriter{
		records:   records,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
		pidPrefix: pidPrefix,
		newID:     uuid.New,
	}
}

/*
RewriteReferences points the references of mirror at public copies.

Description: Each referenced id is replaced by "<catalogueId>.<id>" when a
public mirror with that id exists for one of the kinds the reference can
name. References to records that are still private are left as they are.

Parameters:
  - context: context.Context
  - mirror: *record.Record (modified in place)

Returns:
  - error: Repository failures
*/
func (rewriter *Rewriter) RewriteReferences(context context.Context, mirror *record.Record) error {
	refs := &mirror.References

	owner, err := rewriter.rewrite(context, mirror.CatalogueID, refs.Owner, ownerKinds(mirror.Kind))
	if err != nil {
		return err
	}
	refs.Owner = owner

	fields := []struct {
		ids   []string
		kinds []record.Kind
	}{
		{refs.Providers, []record.Kind{record.KindProvider}},
		{refs.Related, []record.Kind{record.KindService}},
		{refs.Required, []record.Kind{record.KindService}},
		{refs.Services, []record.Kind{record.KindService}},
	}

	for _, field := range fields {
		for i, id := range field.ids {
			if field.ids[i], err = rewriter.rewrite(context, mirror.CatalogueID, id, field.kinds); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rewriter *Rewriter) rewrite(context context.Context, catalogueID, id string, kinds []record.Kind) (string, error) {
	prefix := catalogueID + constants.PublicIDSeparator
	if id == "" || strings.HasPrefix(id, prefix) {
		return id, nil
	}

	publicID := prefix + id
	for _, kind := range kinds {
		exists, err := rewriter.records.Exists(context, record.Key{Kind: kind, CatalogueID: catalogueID, ID: publicID})
		if err != nil {
			return "", err
		}
		if exists {
			return publicID, nil
		}
	}
	return id, nil
}

// ownerKinds lists the kinds that can own a record of kind.
func ownerKinds(kind record.Kind) []record.Kind {
	var owners []record.Kind
	for _, candidate := range record.Kinds() {
		if slices.Contains(candidate.Dependents(), kind) {
			owners = append(owners, candidate)
		}
	}
	return owners
}

// # Persistent Identifiers

/*
CreateOrUpdatePID settles the identifiers of mirror.

Description: On first mirroring (existing == nil) a PID is minted unless
the record already carries one. On later synchronisations the identifiers
of existing are kept as they are, including the PID byte for byte, and
alternative identifiers newly supplied on mirror are appended. A PID
supplied by the caller never replaces the stored one.

Parameters:
  - mirror: *record.Record (modified in place)
  - existing: *record.Record (stored mirror, nil on creation)
*/
func (rewriter *Rewriter) CreateOrUpdatePID(mirror *record.Record, existing *record.Record) {
	if existing == nil {
		if _, ok := mirror.Identifiers.PID(); !ok {
			mirror.Identifiers.AlternativeIdentifiers = append(mirror.Identifiers.AlternativeIdentifiers, rewriter.mintPID(mirror))
		}
		return
	}

	merged := record.Identifiers{
		OriginalID:             existing.Identifiers.OriginalID,
		AlternativeIdentifiers: slices.Clone(existing.Identifiers.AlternativeIdentifiers),
	}
	_, hasPID := merged.PID()

	for _, candidate := range mirror.Identifiers.AlternativeIdentifiers {
		if candidate.Type == constants.IdentifierTypePID && hasPID {
			continue
		}
		if slices.ContainsFunc(merged.AlternativeIdentifiers, func(stored record.AlternativeIdentifier) bool {
			return stored.Type == candidate.Type && stored.Value == candidate.Value
		}) {
			continue
		}
		merged.AlternativeIdentifiers = append(merged.AlternativeIdentifiers, candidate)
	}

	mirror.Identifiers = merged
}

func (rewriter *Rewriter) mintPID(mirror *record.Record) record.AlternativeIdentifier {
	return record.AlternativeIdentifier{
		Type:  constants.IdentifierTypePID,
		Value: rewriter.pidPrefix + "/" + rewriter.newID(),
		URL:   rewriter.baseURL + "/" + mirror.Kind.PathSegment() + mirror.ID,
	}
}
