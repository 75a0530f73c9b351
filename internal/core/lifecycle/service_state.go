// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

// # Verification

/*
Verify moves a record to the status named by term.

Description: term is parsed through the vocabulary of the record's kind.
Approved defaults active to true and appends Onboard/Approved; Rejected
forces active to false and appends Onboard/Rejected; Pending forces active
to false and appends Onboard/Registered. For resources owned directly by a
provider, the provider's template status follows in lock-step. Verifying to
the current state changes nothing.

Parameters:
  - context: context.Context
  - kind, catalogueID, id: record key
  - term: string (vocabulary term, e.g. "approved resource")
  - active: *bool (nil for the status default)

Returns:
  - *record.Record: The stored record
  - error: ValidationError for unknown terms, drafts and public records
*/
func (service *Service) Verify(context context.Context, kind record.Kind, catalogueID, id, term string, active *bool) (*record.Record, error) {
	defer service.metrics.ObserveOperation("verify", time.Now())

	status, err := service.vocabulary.ParseStatus(kind, term)
	if err != nil {
		return nil, err
	}

	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.Draft {
		return nil, apperr.Validationf("draft %s %q must be submitted before it is verified", r.Kind, r.ID)
	}

	candidate := r.Clone()
	candidate.Status = status

	var action record.ActionType
	switch status {
	case record.StatusApproved:
		candidate.Active = active == nil || *active
		action = record.ActionApproved
	case record.StatusRejected:
		candidate.Active = false
		action = record.ActionRejected
	default:
		candidate.Active = false
		action = record.ActionRegistered
	}

	if record.SameState(r, candidate) {
		return r, nil
	}

	candidate.AppendEvent(service.event(context, record.EventOnboard, action, ""))
	service.touch(context, candidate)

	if err := service.save(context, candidate); err != nil {
		return nil, err
	}

	if err := service.syncTemplate(context, candidate); err != nil {
		service.log(context).ErrorContext(context, "template_status_sync_failed",
			slog.String("id", candidate.ID),
			slog.Any("error", err),
		)
	}

	service.metrics.ObserveTransition(string(candidate.Kind), string(action))
	service.log(context).InfoContext(context, "record_verified",
		slog.String("kind", string(candidate.Kind)),
		slog.String("id", candidate.ID),
		slog.String("status", service.vocabulary.StatusTerm(candidate.Kind, candidate.Status)),
		slog.Bool("active", candidate.Active),
	)
	return candidate, nil
}

// syncTemplate moves the owning provider's template status in lock-step
// with a verified resource. Providers and extensions have no template.
func (service *Service) syncTemplate(context context.Context, r *record.Record) error {
	if r.Kind == record.KindProvider || r.Kind.IsExtension() {
		return nil
	}

	provider, err := service.OwningProvider(context, r)
	if err != nil {
		return err
	}

	template := record.TemplateFor(r.Status)
	if provider.TemplateStatus == template {
		return nil
	}

	provider.TemplateStatus = template
	service.touch(context, provider)
	if err := service.save(context, provider); err != nil {
		return err
	}

	service.log(context).InfoContext(context, "provider_template_updated",
		slog.String("provider", provider.ID),
		slog.String("template_status", service.vocabulary.TemplateTerm(template)),
	)
	return nil
}

// # Activation

/*
Publish sets the active flag and cascades it to approved dependents.

Description: A record that is pending or rejected and currently inactive
cannot be published either way. Publishing to the current value changes
nothing and does not cascade.

Returns:
  - *record.Record: The stored record
  - error: ValidationError for drafts, public records and unapproved
    inactive records
*/
func (service *Service) Publish(context context.Context, kind record.Kind, catalogueID, id string, active bool) (*record.Record, error) {
	defer service.metrics.ObserveOperation("publish", time.Now())

	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.Draft {
		return nil, apperr.Validationf("draft %s %q cannot be published", r.Kind, r.ID)
	}
	if (r.Status == record.StatusPending || r.Status == record.StatusRejected) && !r.Active {
		return nil, apperr.Validationf("%s %q has not been approved and cannot be activated", r.Kind, r.ID)
	}
	if r.Active == active {
		return r, nil
	}

	if err := service.setActive(context, r, active); err != nil {
		return nil, err
	}

	service.cascade(context, r, service.activationCascade(active))
	return r, nil
}

func (service *Service) setActive(context context.Context, r *record.Record, active bool) error {
	action := record.ActionDeactivated
	if active {
		action = record.ActionActivated
	}

	r.Active = active
	r.AppendEvent(service.event(context, record.EventUpdate, action, ""))
	service.touch(context, r)

	if err := service.save(context, r); err != nil {
		return err
	}
	service.metrics.ObserveTransition(string(r.Kind), string(action))
	return nil
}

// # Suspension

// Suspend sets the suspended flag and cascades it to every dependent,
// whatever their status. Drafts cannot be suspended.
func (service *Service) Suspend(context context.Context, kind record.Kind, catalogueID, id string, suspend bool) (*record.Record, error) {
	defer service.metrics.ObserveOperation("suspend", time.Now())

	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.Draft {
		return nil, apperr.Validationf("draft %s %q cannot be suspended", r.Kind, r.ID)
	}
	if r.Suspended == suspend {
		return r, nil
	}

	if err := service.setSuspended(context, r, suspend); err != nil {
		return nil, err
	}

	service.cascade(context, r, service.suspensionCascade(suspend))
	return r, nil
}

func (service *Service) setSuspended(context context.Context, r *record.Record, suspend bool) error {
	action := record.ActionUnsuspended
	if suspend {
		action = record.ActionSuspended
	}

	r.Suspended = suspend
	r.AppendEvent(service.event(context, record.EventUpdate, action, ""))
	service.touch(context, r)

	if err := service.save(context, r); err != nil {
		return err
	}
	service.metrics.ObserveTransition(string(r.Kind), string(action))
	return nil
}

// # Audit

// Audit records an audit verdict. Every call appends an Audit event; an
// audit is an act rather than a state, so repeating one is not a no-op.
func (service *Service) Audit(context context.Context, kind record.Kind, catalogueID, id, comment string, action record.ActionType) (*record.Record, error) {
	if action != record.ActionValid && action != record.ActionInvalid {
		return nil, apperr.Validationf("audit action must be %q or %q", record.ActionValid, record.ActionInvalid)
	}

	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.Draft {
		return nil, apperr.Validationf("draft %s %q cannot be audited", r.Kind, r.ID)
	}

	r.AppendEvent(service.event(context, record.EventAudit, action, comment))
	service.touch(context, r)

	if err := service.save(context, r); err != nil {
		return nil, err
	}

	service.metrics.ObserveTransition(string(r.Kind), string(action))
	return r, nil
}

// ClassifyAuditState loads a record and classifies its event log.
func (service *Service) ClassifyAuditState(context context.Context, kind record.Kind, catalogueID, id string) (record.AuditState, error) {
	r, err := service.GetForCatalogue(context, kind, catalogueID, id)
	if err != nil {
		return "", err
	}
	return record.ClassifyAudit(r.EventLog), nil
}

// # Public Mirror

// CreatePublicMirror mirrors an approved private record.
func (service *Service) CreatePublicMirror(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}

	created, err := service.mirrors.Create(context, r)
	if err != nil {
		return nil, err
	}
	service.invalidate(context)
	return created, nil
}

// ResyncPublicMirror refreshes an existing mirror from its private record.
func (service *Service) ResyncPublicMirror(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}

	updated, err := service.mirrors.Update(context, r)
	if err != nil {
		return nil, err
	}
	service.invalidate(context)
	return updated, nil
}

// DeletePublicMirror removes the mirror of a private record, if any.
func (service *Service) DeletePublicMirror(context context.Context, kind record.Kind, catalogueID, id string) error {
	r, err := service.loadPrivate(context, kind, catalogueID, id)
	if err != nil {
		return err
	}

	if err := service.mirrors.Delete(context, r); err != nil {
		return err
	}
	service.invalidate(context)
	return nil
}
