// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/mirror"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/validate"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/slug"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/uuid"
)

const (
	FieldID                     = "id"
	FieldName                   = "name"
	FieldOwner                  = "owner"
	FieldRelated                = "related"
	FieldRequired               = "required"
	FieldAlternativeIdentifiers = "alternative_identifiers"
)

const maxNameLength = 500

// # Registration

/*
Add registers a new record.

Description: A record submitted with draft=true is stored as a draft with a
Draft/Created event and no status. Any other record is onboarded right away,
exactly as [Service.TransformToNonDraft] would onboard a draft. A missing id
is derived from the name.

Parameters:
  - context: context.Context
  - input: *record.Record (kind, name, references, payload, draft flag)

Returns:
  - *record.Record: The stored record
  - error: ValidationError, NotFound for a missing owner, Conflict for a
    duplicate id
*/
func (service *Service) Add(context context.Context, input *record.Record) (*record.Record, error) {
	r := &record.Record{
		Kind:        input.Kind,
		ID:          strings.TrimSpace(input.ID),
		CatalogueID: input.CatalogueID,
		Name:        strings.TrimSpace(input.Name),
		Draft:       input.Draft,
		References:  input.References,
		Payload:     input.Payload,
		Identifiers: record.Identifiers{
			AlternativeIdentifiers: input.Identifiers.AlternativeIdentifiers,
		},
	}
	if r.CatalogueID == "" {
		r.CatalogueID = service.homeCatalogue
	}
	if r.ID == "" {
		r.ID = newRecordID(r.Name)
	}
	r.Identifiers.OriginalID = r.ID

	if err := service.validateFields(r); err != nil {
		return nil, err
	}
	if err := service.checkOwner(context, r); err != nil {
		return nil, err
	}

	now := service.now().UTC()
	actor := service.actor(context)
	r.Metadata = record.Metadata{RegisteredBy: actor.Email, RegisteredAt: now, ModifiedBy: actor.Email, ModifiedAt: now}
	if r.Kind == record.KindProvider {
		r.TemplateStatus = record.TemplateNone
	}

	var provider *record.Record
	if r.Draft {
		r.AppendEvent(service.event(context, record.EventDraft, record.ActionCreated, ""))
	} else {
		var err error
		if provider, err = service.onboard(context, r); err != nil {
			return nil, err
		}
	}

	if err := service.records.Create(context, r); err != nil {
		return nil, err
	}
	service.invalidate(context)
	service.markTemplatePending(context, provider)

	service.metrics.ObserveTransition(string(r.Kind), string(record.ActionRegistered))
	service.log(context).InfoContext(context, "record_added",
		slog.String("kind", string(r.Kind)),
		slog.String("id", r.ID),
		slog.Bool("draft", r.Draft),
		slog.String("status", string(r.Status)),
	)
	return r, nil
}

// TransformToNonDraft submits a draft for onboarding. Calling it on a record
// that is not a draft is an error.
func (service *Service) TransformToNonDraft(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if !r.Draft {
		return nil, apperr.Validationf("%s %q is not a draft", r.Kind, r.ID)
	}

	if err := service.validateFields(r); err != nil {
		return nil, err
	}
	if err := service.checkOwner(context, r); err != nil {
		return nil, err
	}

	r.Draft = false
	provider, err := service.onboard(context, r)
	if err != nil {
		return nil, err
	}
	service.touch(context, r)

	if err := service.save(context, r); err != nil {
		return nil, err
	}
	service.markTemplatePending(context, provider)

	service.metrics.ObserveTransition(string(r.Kind), string(record.ActionRegistered))
	service.log(context).InfoContext(context, "draft_submitted",
		slog.String("kind", string(r.Kind)),
		slog.String("id", r.ID),
		slog.String("status", string(r.Status)),
	)
	return r, nil
}

/*
onboard sets the initial status of a freshly submitted record.

Description:
  - Providers start pending and inactive with no template status.
  - Extensions follow their parent: approved and active under an approved
    parent, pending otherwise.
  - Resources follow the template status of their provider: approved and
    active when the template is approved, pending otherwise. The first
    resource of a provider without a template makes it pending.

Every branch appends Onboard/Registered; the approved branches also append
Onboard/Approved. onboard only changes r. When the provider's template must
become pending, the provider is returned and the caller applies the change
with [Service.markTemplatePending] once r itself is stored.
*/
func (service *Service) onboard(context context.Context, r *record.Record) (*record.Record, error) {
	r.Draft = false
	r.Status, r.Active = record.StatusPending, false
	r.AppendEvent(service.event(context, record.EventOnboard, record.ActionRegistered, ""))

	var pendingTemplate *record.Record

	switch {
	case r.Kind == record.KindProvider:
		return nil, nil

	case r.Kind.IsExtension():
		parent, err := service.owner(context, r)
		if err != nil {
			return nil, err
		}
		if parent.Status == record.StatusApproved {
			r.Status, r.Active = record.StatusApproved, true
		}

	default:
		provider, err := service.owner(context, r)
		if err != nil {
			return nil, err
		}
		switch provider.TemplateStatus {
		case record.TemplateApproved:
			r.Status, r.Active = record.StatusApproved, true
		case record.TemplateNone, "":
			pendingTemplate = provider
		}
	}

	if r.Status == record.StatusApproved {
		r.AppendEvent(service.event(context, record.EventOnboard, record.ActionApproved, ""))
	}
	return pendingTemplate, nil
}

// markTemplatePending moves provider to a pending template after its first
// resource was stored. A nil provider is a no-op. Failures are logged; the
// resource write already succeeded.
func (service *Service) markTemplatePending(context context.Context, provider *record.Record) {
	if provider == nil {
		return
	}

	provider.TemplateStatus = record.TemplatePending
	service.touch(context, provider)
	if err := service.save(context, provider); err != nil {
		service.log(context).ErrorContext(context, "template_status_sync_failed",
			slog.String("id", provider.ID),
			slog.Any("error", err),
		)
	}
}

// # Editing

/*
Update applies caller edits to a private record.

Description: Name, payload, non-owner references and alternative
identifiers are editable; ownership changes go through [Service.Move]. A
non-zero input.Version must match the stored version. An edit that changes
nothing returns the stored record without a new event.

Returns:
  - *record.Record: The stored record
  - error: ValidationError, NotFound, or Conflict on a stale version
*/
func (service *Service) Update(context context.Context, input *record.Record) (*record.Record, error) {
	existing, err := service.loadPrivate(context, input.Kind, input.CatalogueID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Version != 0 && input.Version != existing.Version {
		return nil, apperr.Conflict(string(existing.Kind) + " was modified since it was read: " + existing.ID)
	}
	if input.References.Owner != "" && input.References.Owner != existing.References.Owner {
		return nil, apperr.ValidationError("ownership changes must use the move action",
			apperr.FieldError{Field: FieldOwner, Message: "cannot be changed by an update"})
	}

	candidate := existing.Clone()
	candidate.Name = strings.TrimSpace(input.Name)
	candidate.Payload = input.Payload
	candidate.References.Providers = input.References.Providers
	candidate.References.Related = input.References.Related
	candidate.References.Required = input.References.Required
	candidate.References.Services = input.References.Services
	candidate.Identifiers.AlternativeIdentifiers = input.Identifiers.AlternativeIdentifiers

	if err := service.validateFields(candidate); err != nil {
		return nil, err
	}
	if record.SameState(existing, candidate) {
		return existing, nil
	}

	candidate.AppendEvent(service.event(context, record.EventUpdate, record.ActionUpdated, ""))
	service.touch(context, candidate)

	if err := service.save(context, candidate); err != nil {
		return nil, err
	}

	service.metrics.ObserveTransition(string(candidate.Kind), string(record.ActionUpdated))
	return candidate, nil
}

// Move re-parents a record under another owner and records a Move/Moved
// event. Providers cannot be moved.
func (service *Service) Move(context context.Context, kind record.Kind, catalogueID, id, newOwner, comment string) (*record.Record, error) {
	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.Kind == record.KindProvider {
		return nil, apperr.ValidationError("providers have no owner to move from")
	}
	if r.References.Owner == newOwner {
		return r, nil
	}

	candidate := r.Clone()
	candidate.References.Owner = newOwner
	if err := service.checkOwner(context, candidate); err != nil {
		return nil, err
	}

	candidate.AppendEvent(service.event(context, record.EventMove, record.ActionMoved, comment))
	service.touch(context, candidate)

	if err := service.save(context, candidate); err != nil {
		return nil, err
	}

	service.metrics.ObserveTransition(string(candidate.Kind), string(record.ActionMoved))
	service.log(context).InfoContext(context, "record_moved",
		slog.String("kind", string(candidate.Kind)),
		slog.String("id", candidate.ID),
		slog.String("from", r.References.Owner),
		slog.String("to", newOwner),
	)
	return candidate, nil
}

// # Deletion

/*
Delete removes a private record and, recursively, its unpublished
dependents.

Description: A public mirror cannot be deleted here, and neither can a
record whose mirror still exists; the mirror has to be removed first with
[Service.DeletePublicMirror]. Dependents that cannot be deleted are logged
and left in place.
*/
func (service *Service) Delete(context context.Context, kind record.Kind, catalogueID, id string) error {
	r, err := service.load(context, kind, catalogueID, id)
	if err != nil {
		return err
	}
	if r.IsPublic() {
		return apperr.Validationf("public %s %q cannot be deleted", r.Kind, r.ID)
	}

	published, err := service.mirrors.Exists(context, r)
	if err != nil {
		return err
	}
	if published {
		return apperr.Validationf("%s %q is published; delete its public record first", r.Kind, r.ID)
	}

	service.cascadeDelete(context, r)

	if err := service.records.Delete(context, r.Key()); err != nil {
		return err
	}
	service.invalidate(context)

	service.log(context).WarnContext(context, "record_deleted",
		slog.String("kind", string(r.Kind)),
		slog.String("id", r.ID),
	)
	return nil
}

// # Ownership

// owner loads the record that owns r.
func (service *Service) owner(context context.Context, r *record.Record) (*record.Record, error) {
	if r.References.Owner == "" {
		return nil, apperr.ValidationError("owner is required",
			apperr.FieldError{Field: FieldOwner, Message: "is required"})
	}

	for _, kind := range ownerKinds(r.Kind) {
		parent, err := service.records.Get(context, record.Key{Kind: kind, CatalogueID: r.CatalogueID, ID: r.References.Owner})
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return parent, nil
	}
	return nil, apperr.NotFound("Owner " + r.References.Owner)
}

// checkOwner verifies that r's owner exists and is a private record.
func (service *Service) checkOwner(context context.Context, r *record.Record) error {
	if r.Kind == record.KindProvider {
		return nil
	}
	parent, err := service.owner(context, r)
	if err != nil {
		return err
	}
	if parent.IsPublic() {
		return apperr.ValidationError("owner must be a private record",
			apperr.FieldError{Field: FieldOwner, Message: "refers to a public record"})
	}
	return nil
}

// OwningProvider walks the owner chain of r up to its provider. A provider
// owns itself.
func (service *Service) OwningProvider(context context.Context, r *record.Record) (*record.Record, error) {
	current := r
	for current.Kind != record.KindProvider {
		parent, err := service.owner(context, current)
		if err != nil {
			return nil, err
		}
		current = parent
	}
	return current, nil
}

func ownerKinds(kind record.Kind) []record.Kind {
	var owners []record.Kind
	for _, candidate := range record.Kinds() {
		if slices.Contains(candidate.Dependents(), kind) {
			owners = append(owners, candidate)
		}
	}
	return owners
}

// # Validation

func (service *Service) validateFields(r *record.Record) error {
	if _, err := record.ParseKind(string(r.Kind)); err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldName, r.Name).
		MaxLen(FieldName, r.Name, maxNameLength).
		Required(FieldID, r.ID).
		Identifier(FieldID, r.ID).
		Identifiers(FieldRelated, r.References.Related).
		Identifiers(FieldRequired, r.References.Required)

	if r.Kind != record.KindProvider {
		validator.
			Required(FieldOwner, r.References.Owner).
			Identifier(FieldOwner, r.References.Owner)
	}

	for index, identifier := range r.Identifiers.AlternativeIdentifiers {
		validator.URL(fmt.Sprintf("%s[%d].url", FieldAlternativeIdentifiers, index), identifier.URL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if _, err := mirror.ComputePublicID(r); err != nil {
		return err
	}
	return nil
}

// newRecordID derives an id from name, falling back to a random id when the
// name has no usable characters.
func newRecordID(name string) string {
	if id := slug.From(name); id != "" {
		return id
	}
	return uuid.New()
}
