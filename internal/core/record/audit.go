// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record

import (
	"slices"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

// # Audit State

// AuditState is the verdict of the latest audit combined with whether the
// record changed after it.
type AuditState string

const (
	AuditNotAudited           AuditState = "not_audited"
	AuditValidAndUpdated      AuditState = "valid_and_updated"
	AuditValidAndNotUpdated   AuditState = "valid_and_not_updated"
	AuditInvalidAndUpdated    AuditState = "invalid_and_updated"
	AuditInvalidAndNotUpdated AuditState = "invalid_and_not_updated"
)

var auditStates = []AuditState{
	AuditNotAudited,
	AuditValidAndUpdated,
	AuditValidAndNotUpdated,
	AuditInvalidAndUpdated,
	AuditInvalidAndNotUpdated,
}

// ParseAuditState validates an audit state received from a caller.
func ParseAuditState(raw string) (AuditState, error) {
	state := AuditState(raw)
	if !slices.Contains(auditStates, state) {
		return "", apperr.Validationf("unknown audit state %q", raw)
	}
	return state, nil
}

/*
ClassifyAudit derives the audit state of an event log.

Description: The greatest-dated Audit event decides the verdict; an Audit
event whose action is anything but Valid counts as Invalid. The record is
"updated" when the greatest-dated Onboard or Update event is strictly later
than that audit. A nil or empty log is NotAudited. The log does not need to
be sorted.

Parameters:
  - log: []Event

Returns:
  - AuditState: Exactly one of the five states
*/
func ClassifyAudit(log []Event) AuditState {
	audit := latestOf(log, EventAudit)
	if audit == nil {
		return AuditNotAudited
	}

	updated := false
	if change := latestOf(log, EventOnboard, EventUpdate); change != nil {
		updated = change.Date > audit.Date
	}

	switch {
	case audit.Action == ActionValid && updated:
		return AuditValidAndUpdated
	case audit.Action == ActionValid:
		return AuditValidAndNotUpdated
	case updated:
		return AuditInvalidAndUpdated
	default:
		return AuditInvalidAndNotUpdated
	}
}
