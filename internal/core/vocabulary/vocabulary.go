// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package vocabulary turns the external status vocabulary into the typed
status enums of the record package.

The vocabulary is parsed once at startup. Lifecycle code never compares raw
terms; it asks the [Registry] to parse a caller-supplied term for a given
resource kind and fails fast on anything unknown.
*/
package vocabulary

import (
	"context"
	"fmt"
	"strings"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

// # Vocabulary Types

const (
	TypeProviderState         = "Provider state"
	TypeResourceState         = "Resource state"
	TypeInteroperabilityState = "Interoperability record state"
	TypeTemplateState         = "Template state"
)

// StateTypes lists the vocabulary types the registry needs.
var StateTypes = []string{TypeProviderState, TypeResourceState, TypeInteroperabilityState, TypeTemplateState}

// Entry is one vocabulary term.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Source loads vocabulary entries of the given types.
type Source interface {
	Entries(context context.Context, types []string) ([]Entry, error)
}

// StaticSource serves a fixed list of entries.
type StaticSource []Entry

func (source StaticSource) Entries(_ context.Context, types []string) ([]Entry, error) {
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	entries := make([]Entry, 0, len(source))
	for _, entry := range source {
		if wanted[entry.Type] {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Defaults mirrors the terms seeded by the catalogue migration.
func Defaults() StaticSource {
	return StaticSource{
		{ID: "provider-pending", Name: "pending provider", Type: TypeProviderState},
		{ID: "provider-approved", Name: "approved provider", Type: TypeProviderState},
		{ID: "provider-rejected", Name: "rejected provider", Type: TypeProviderState},
		{ID: "resource-pending", Name: "pending resource", Type: TypeResourceState},
		{ID: "resource-approved", Name: "approved resource", Type: TypeResourceState},
		{ID: "resource-rejected", Name: "rejected resource", Type: TypeResourceState},
		{ID: "interoperability-record-pending", Name: "pending interoperability record", Type: TypeInteroperabilityState},
		{ID: "interoperability-record-approved", Name: "approved interoperability record", Type: TypeInteroperabilityState},
		{ID: "interoperability-record-rejected", Name: "rejected interoperability record", Type: TypeInteroperabilityState},
		{ID: "template-none", Name: "no template status", Type: TypeTemplateState},
		{ID: "template-pending", Name: "pending template", Type: TypeTemplateState},
		{ID: "template-approved", Name: "approved template", Type: TypeTemplateState},
		{ID: "template-rejected", Name: "rejected template", Type: TypeTemplateState},
	}
}

// StateType returns the vocabulary type holding the status terms of kind.
func StateType(kind record.Kind) string {
	switch kind {
	case record.KindProvider:
		return TypeProviderState
	case record.KindInteroperabilityRecord:
		return TypeInteroperabilityState
	default:
		return TypeResourceState
	}
}

// # Registry

// Registry is the parsed, immutable vocabulary.
type Registry struct {
	byTerm        map[string]Entry
	statuses      map[string]map[string]record.Status
	terms         map[string]map[record.Status]string
	templates     map[string]record.TemplateStatus
	templateTerms map[record.TemplateStatus]string
}

/*
Load reads the state vocabulary from source and builds a [Registry].

Description: Every state type must define exactly the pending, approved and
rejected terms (plus "none" for templates). A term whose leading word does
not name a status is rejected so that a bad vocabulary fails at startup
rather than on the first verification.

Parameters:
  - context: context.Context
  - source: Source

Returns:
  - *Registry: The parsed vocabulary
  - error: Source failures or an incomplete vocabulary
*/
func Load(context context.Context, source Source) (*Registry, error) {
	entries, err := source.Entries(context, StateTypes)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: load failed: %w", err)
	}

	registry := &Registry{
		byTerm:        make(map[string]Entry),
		statuses:      make(map[string]map[string]record.Status),
		terms:         make(map[string]map[record.Status]string),
		templates:     make(map[string]record.TemplateStatus),
		templateTerms: make(map[record.TemplateStatus]string),
	}

	for _, entry := range entries {
		term := normalize(entry.Name)
		registry.byTerm[term] = entry
		registry.byTerm[normalize(entry.ID)] = entry

		if entry.Type == TypeTemplateState {
			template, err := templateOf(term)
			if err != nil {
				return nil, err
			}
			registry.templates[term] = template
			registry.templates[normalize(entry.ID)] = template
			registry.templateTerms[template] = entry.Name
			continue
		}

		status, err := statusOf(term)
		if err != nil {
			return nil, err
		}
		if registry.statuses[entry.Type] == nil {
			registry.statuses[entry.Type] = make(map[string]record.Status)
			registry.terms[entry.Type] = make(map[record.Status]string)
		}
		registry.statuses[entry.Type][term] = status
		registry.statuses[entry.Type][normalize(entry.ID)] = status
		registry.terms[entry.Type][status] = entry.Name
	}

	for _, stateType := range []string{TypeProviderState, TypeResourceState, TypeInteroperabilityState} {
		if len(registry.terms[stateType]) != 3 {
			return nil, fmt.Errorf("vocabulary: %q must define pending, approved and rejected terms", stateType)
		}
	}
	if len(registry.templateTerms) != 4 {
		return nil, fmt.Errorf("vocabulary: %q must define none, pending, approved and rejected terms", TypeTemplateState)
	}

	return registry, nil
}

// Lookup resolves a term or id to its entry.
func (registry *Registry) Lookup(term string) (Entry, error) {
	entry, ok := registry.byTerm[normalize(term)]
	if !ok {
		return Entry{}, apperr.NotFound("Vocabulary term " + term)
	}
	return entry, nil
}

// ParseStatus parses a status term for kind. A term that exists but belongs
// to another kind's vocabulary is as invalid as an unknown one.
func (registry *Registry) ParseStatus(kind record.Kind, term string) (record.Status, error) {
	status, ok := registry.statuses[StateType(kind)][normalize(term)]
	if !ok {
		return "", apperr.Validationf("%q is not a valid status for %s", term, kind)
	}
	return status, nil
}

// StatusTerm renders status with the vocabulary term of kind.
func (registry *Registry) StatusTerm(kind record.Kind, status record.Status) string {
	return registry.terms[StateType(kind)][status]
}

// ParseTemplate parses a template status term.
func (registry *Registry) ParseTemplate(term string) (record.TemplateStatus, error) {
	template, ok := registry.templates[normalize(term)]
	if !ok {
		return "", apperr.Validationf("%q is not a valid template status", term)
	}
	return template, nil
}

// TemplateTerm renders a template status with its vocabulary term.
func (registry *Registry) TemplateTerm(template record.TemplateStatus) string {
	return registry.templateTerms[template]
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func statusOf(term string) (record.Status, error) {
	switch leading(term) {
	case "pending":
		return record.StatusPending, nil
	case "approved":
		return record.StatusApproved, nil
	case "rejected":
		return record.StatusRejected, nil
	}
	return "", fmt.Errorf("vocabulary: cannot derive a status from %q", term)
}

func templateOf(term string) (record.TemplateStatus, error) {
	if leading(term) == "no" {
		return record.TemplateNone, nil
	}
	status, err := statusOf(term)
	if err != nil {
		return "", err
	}
	return record.TemplateFor(status), nil
}

func leading(term string) string {
	word, _, _ := strings.Cut(term, " ")
	return word
}
