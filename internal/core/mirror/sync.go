// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package mirror

import (
	"context"
	"log/slog"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/metrics"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/notify"
)

// Publisher hands a notification to the delivery pipeline without waiting.
type Publisher interface {
	Emit(context context.Context, topic string, payload any)
}

// Synchronizer creates, refreshes and removes public mirrors.
type Synchronizer struct {
	records   record.Repository
	rewriter  *Rewriter
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewSynchronizer wires a [Synchronizer]. m may be nil.
func NewSynchronizer(records record.Repository, rewriter *Rewriter, publisher Publisher, m *metrics.Metrics, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		records:   records,
		rewriter:  rewriter,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// PublicKey returns the storage key of the mirror of r. For a mirror it is
// the record's own key.
func PublicKey(r *record.Record) (record.Key, error) {
	if r.IsPublic() {
		return r.Key(), nil
	}
	publicID, err := ComputePublicID(r)
	if err != nil {
		return record.Key{}, err
	}
	return record.Key{Kind: r.Kind, CatalogueID: r.CatalogueID, ID: publicID}, nil
}

// Exists reports whether r has a public mirror.
func (synchronizer *Synchronizer) Exists(context context.Context, r *record.Record) (bool, error) {
	key, err := PublicKey(r)
	if err != nil {
		return false, err
	}
	return synchronizer.records.Exists(context, key)
}

/*
Create mirrors an approved private record.

Description: The mirror is a copy of r under the public id with
published=true, references rewritten and a freshly minted PID. A
"<kind>.create" notification is emitted after the write.

Parameters:
  - context: context.Context
  - r: *record.Record (private, non-draft, approved)

Returns:
  - *record.Record: The stored mirror
  - error: ValidationError for drafts, unapproved or public input; Conflict
    when the mirror already exists
*/
func (synchronizer *Synchronizer) Create(context context.Context, r *record.Record) (*record.Record, error) {
	if r.IsPublic() {
		return nil, apperr.Validationf("%s %q is already a public record", r.Kind, r.ID)
	}
	publicID, err := ComputePublicID(r)
	if err != nil {
		return nil, err
	}
	if r.Draft {
		return nil, apperr.Validationf("draft %s %q cannot be published", r.Kind, r.ID)
	}
	if r.Status != record.StatusApproved {
		return nil, apperr.Validationf("%s %q must be approved before it is made public", r.Kind, r.ID)
	}

	mirror := r.Clone()
	mirror.ID = publicID
	mirror.Version = 0
	mirror.Metadata.Published = true
	if mirror.Identifiers.OriginalID == "" {
		mirror.Identifiers.OriginalID = r.ID
	}

	exists, err := synchronizer.records.Exists(context, mirror.Key())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("public " + string(r.Kind) + " already exists: " + publicID)
	}

	if err := synchronizer.rewriter.RewriteReferences(context, mirror); err != nil {
		return nil, err
	}
	synchronizer.rewriter.CreateOrUpdatePID(mirror, nil)

	if err := synchronizer.records.Create(context, mirror); err != nil {
		return nil, err
	}

	synchronizer.emit(context, mirror, notify.ActionCreate)
	return mirror, nil
}

/*
Update refreshes the mirror of r from r.

Description: Everything is copied from r except the id, the published flag
and the identifiers, which are kept from the stored mirror with newly
supplied alternative identifiers merged in.

Returns:
  - *record.Record: The stored mirror
  - error: NotFound when r was never mirrored
*/
func (synchronizer *Synchronizer) Update(context context.Context, r *record.Record) (*record.Record, error) {
	key, err := PublicKey(r)
	if err != nil {
		return nil, err
	}

	existing, err := synchronizer.records.Get(context, key)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Public " + string(r.Kind) + " " + key.ID)
		}
		return nil, err
	}

	mirror := r.Clone()
	mirror.ID = existing.ID
	mirror.Version = existing.Version
	mirror.Metadata.Published = existing.Metadata.Published

	if err := synchronizer.rewriter.RewriteReferences(context, mirror); err != nil {
		return nil, err
	}
	synchronizer.rewriter.CreateOrUpdatePID(mirror, existing)

	if err := synchronizer.records.Update(context, mirror); err != nil {
		return nil, err
	}

	synchronizer.emit(context, mirror, notify.ActionUpdate)
	return mirror, nil
}

// Delete removes the mirror of r. A record that was never mirrored is not
// an error.
func (synchronizer *Synchronizer) Delete(context context.Context, r *record.Record) error {
	key, err := PublicKey(r)
	if err != nil {
		return err
	}

	existing, err := synchronizer.records.Get(context, key)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := synchronizer.records.Delete(context, key); err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	synchronizer.emit(context, existing, notify.ActionDelete)
	return nil
}

func (synchronizer *Synchronizer) emit(context context.Context, mirror *record.Record, action string) {
	synchronizer.metrics.ObserveMirror(string(mirror.Kind), action)
	synchronizer.logger.InfoContext(context, "public_mirror_synced",
		slog.String("kind", string(mirror.Kind)),
		slog.String("id", mirror.ID),
		slog.String("action", action),
	)
	synchronizer.publisher.Emit(context, notify.Topic(string(mirror.Kind), action), mirror)
}
