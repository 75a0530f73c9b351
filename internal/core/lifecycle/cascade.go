// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle

import (
	"context"
	"log/slog"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
)

// # Cascade

const (
	cascadeApplied = "applied"
	cascadeSkipped = "skipped"
	cascadeFailed  = "failed"
)

// cascadeStep is one propagated action. eligible selects the dependents the
// action reaches; apply changes one of them and reports whether it did.
type cascadeStep struct {
	name     string
	eligible func(dependent *record.Record) bool
	apply    func(context context.Context, dependent *record.Record) (bool, error)
}

// activationCascade reaches approved, submitted dependents only.
func (service *Service) activationCascade(active bool) cascadeStep {
	return cascadeStep{
		name: "publish",
		eligible: func(dependent *record.Record) bool {
			return dependent.Status == record.StatusApproved && !dependent.Draft
		},
		apply: func(context context.Context, dependent *record.Record) (bool, error) {
			if dependent.Active == active {
				return false, nil
			}
			return true, service.setActive(context, dependent, active)
		},
	}
}

// suspensionCascade reaches every dependent whatever its status.
func (service *Service) suspensionCascade(suspend bool) cascadeStep {
	return cascadeStep{
		name:     "suspend",
		eligible: func(*record.Record) bool { return true },
		apply: func(context context.Context, dependent *record.Record) (bool, error) {
			if dependent.Suspended == suspend {
				return false, nil
			}
			return true, service.setSuspended(context, dependent, suspend)
		},
	}
}

/*
cascade applies step to every private dependent of r, depth first.

Description: Ineligible dependents are skipped together with their own
dependents. A failure on one dependent is logged and counted; the rest of
the cascade still runs, and the already committed change on r stays.
*/
func (service *Service) cascade(context context.Context, r *record.Record, step cascadeStep) {
	logger := service.log(context)

	for _, dependent := range service.dependents(context, r) {
		if !step.eligible(dependent) {
			service.metrics.ObserveCascade(step.name, cascadeSkipped)
			continue
		}

		changed, err := step.apply(context, dependent)
		if err != nil {
			service.metrics.ObserveCascade(step.name, cascadeFailed)
			logger.ErrorContext(context, "cascade_failed",
				slog.String("action", step.name),
				slog.String("root", r.ID),
				slog.String("kind", string(dependent.Kind)),
				slog.String("id", dependent.ID),
				slog.Any("error", err),
			)
			continue
		}
		if changed {
			service.metrics.ObserveCascade(step.name, cascadeApplied)
		}

		service.cascade(context, dependent, step)
	}
}

// cascadeDelete removes the dependents of r that have no public mirror,
// deepest first. Published dependents are left in place with their subtree.
func (service *Service) cascadeDelete(context context.Context, r *record.Record) {
	logger := service.log(context)

	for _, dependent := range service.dependents(context, r) {
		published, err := service.mirrors.Exists(context, dependent)
		if err == nil && published {
			service.metrics.ObserveCascade("delete", cascadeSkipped)
			logger.WarnContext(context, "cascade_delete_skipped_published",
				slog.String("kind", string(dependent.Kind)),
				slog.String("id", dependent.ID),
			)
			continue
		}

		if err == nil {
			service.cascadeDelete(context, dependent)
			err = service.records.Delete(context, dependent.Key())
		}
		if err != nil {
			service.metrics.ObserveCascade("delete", cascadeFailed)
			logger.ErrorContext(context, "cascade_failed",
				slog.String("action", "delete"),
				slog.String("root", r.ID),
				slog.String("kind", string(dependent.Kind)),
				slog.String("id", dependent.ID),
				slog.Any("error", err),
			)
			continue
		}
		service.metrics.ObserveCascade("delete", cascadeApplied)
	}
}

// dependents lists the private records owned by r across every dependent
// kind. Lookup failures are logged and yield a shorter list.
func (service *Service) dependents(context context.Context, r *record.Record) []*record.Record {
	var found []*record.Record
	for _, kind := range r.Kind.Dependents() {
		owned, err := service.records.ListByOwner(context, kind, r.CatalogueID, r.ID)
		if err != nil {
			service.log(context).ErrorContext(context, "cascade_lookup_failed",
				slog.String("kind", string(kind)),
				slog.String("owner", r.ID),
				slog.Any("error", err),
			)
			continue
		}
		for _, dependent := range owned {
			if !dependent.IsPublic() {
				found = append(found, dependent)
			}
		}
	}
	return found
}
