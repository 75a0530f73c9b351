// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package record defines the catalogue record: the lifecycle-managed wrapper
around one provider or resource document, its event history and its
persistence.

The record package owns data only. Transitions live in the lifecycle
package and public mirroring in the mirror package.
*/
package record

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/constants"
)

// # Resource Kinds

// Kind names the type of document a record wraps.
type Kind string

const (
	KindProvider               Kind = "provider"
	KindService                Kind = "service"
	KindTool                   Kind = "tool"
	KindTrainingResource       Kind = "training_resource"
	KindInteroperabilityRecord Kind = "interoperability_record"
	KindDatasource             Kind = "datasource"
	KindHelpdesk               Kind = "helpdesk"
	KindMonitoring             Kind = "monitoring"
)

var allKinds = []Kind{
	KindProvider,
	KindService,
	KindTool,
	KindTrainingResource,
	KindInteroperabilityRecord,
	KindDatasource,
	KindHelpdesk,
	KindMonitoring,
}

var dependents = map[Kind][]Kind{
	KindProvider:         {KindService, KindTool, KindTrainingResource, KindInteroperabilityRecord},
	KindService:          {KindDatasource, KindHelpdesk, KindMonitoring},
	KindTrainingResource: {KindHelpdesk, KindMonitoring},
}

var pathSegments = map[Kind]string{
	KindProvider:               "providers/",
	KindService:                "services/",
	KindTool:                   "tools/",
	KindTrainingResource:       "training-resources/",
	KindInteroperabilityRecord: "guidelines/",
	KindDatasource:             "datasources/",
	KindHelpdesk:               "helpdesks/",
	KindMonitoring:             "monitorings/",
}

// Kinds returns every known kind, providers first.
func Kinds() []Kind {
	return slices.Clone(allKinds)
}

// ParseKind validates a kind received from a caller.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(allKinds, kind) {
		return "", apperr.Validationf("unknown resource kind %q", raw)
	}
	return kind, nil
}

// Dependents returns the kinds whose records hang off a record of kind k.
// A Provider owns services, tools, training resources and interoperability
// records; services and training resources own their extensions.
func (k Kind) Dependents() []Kind {
	return dependents[k]
}

// IsExtension reports whether k is owned by a resource rather than a provider.
func (k Kind) IsExtension() bool {
	switch k {
	case KindDatasource, KindHelpdesk, KindMonitoring:
		return true
	}
	return false
}

// PathSegment is the public URL segment used when minting persistent identifiers.
func (k Kind) PathSegment() string {
	return pathSegments[k]
}

// # Status

// Status is the verification state of a non-draft record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// TemplateStatus tracks the first resource a provider submits for review.
// It moves in lock-step with the verification of that resource.
type TemplateStatus string

const (
	TemplateNone     TemplateStatus = "none"
	TemplatePending  TemplateStatus = "pending"
	TemplateApproved TemplateStatus = "approved"
	TemplateRejected TemplateStatus = "rejected"
)

// TemplateFor maps a resource status to the matching template status.
func TemplateFor(status Status) TemplateStatus {
	switch status {
	case StatusApproved:
		return TemplateApproved
	case StatusRejected:
		return TemplateRejected
	default:
		return TemplatePending
	}
}

// # Record

// Key identifies a record. IDs are unique within (kind, catalogue).
type Key struct {
	Kind        Kind
	CatalogueID string
	ID          string
}

func (key Key) String() string {
	return string(key.Kind) + "/" + key.CatalogueID + "/" + key.ID
}

// Metadata carries bookkeeping fields. Published is true exactly for public
// mirror copies.
type Metadata struct {
	Published    bool      `json:"published"`
	RegisteredBy string    `json:"registered_by,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	ModifiedBy   string    `json:"modified_by,omitempty"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// AlternativeIdentifier is one (type, value) pair attached to a record.
type AlternativeIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	URL   string `json:"url,omitempty"`
}

// Identifiers holds the first id the record was registered under and its
// alternative identifiers. At most one alternative identifier is a PID.
type Identifiers struct {
	OriginalID             string                  `json:"original_id"`
	AlternativeIdentifiers []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

// PID returns the persistent identifier, if one was minted.
func (identifiers Identifiers) PID() (AlternativeIdentifier, bool) {
	for _, identifier := range identifiers.AlternativeIdentifiers {
		if identifier.Type == constants.IdentifierTypePID {
			return identifier, true
		}
	}
	return AlternativeIdentifier{}, false
}

// References lists the other records a record points at by id.
//
// Owner is the parent provider for resources and the parent resource for
// extensions.
type References struct {
	Owner     string   `json:"owner,omitempty"`
	Providers []string `json:"providers,omitempty"`
	Related   []string `json:"related,omitempty"`
	Required  []string `json:"required,omitempty"`
	Services  []string `json:"services,omitempty"`
}

// Record is the unit of lifecycle management.
type Record struct {
	Kind           Kind            `json:"kind"`
	ID             string          `json:"id"`
	CatalogueID    string          `json:"catalogue_id"`
	Name           string          `json:"name"`
	Status         Status          `json:"status,omitempty"`
	TemplateStatus TemplateStatus  `json:"template_status,omitempty"`
	Active         bool            `json:"active"`
	Suspended      bool            `json:"suspended"`
	Draft          bool            `json:"draft"`
	Metadata       Metadata        `json:"metadata"`
	Identifiers    Identifiers     `json:"identifiers"`
	References     References      `json:"references"`
	Payload        json.RawMessage `json:"payload,omitempty"`

	EventLog              []Event `json:"event_log"`
	LatestOnboardingEvent *Event  `json:"latest_onboarding_event,omitempty"`
	LatestUpdateEvent     *Event  `json:"latest_update_event,omitempty"`
	LatestAuditEvent      *Event  `json:"latest_audit_event,omitempty"`

	// Version increases by one on every successful write.
	Version int64 `json:"version"`
}

// Key returns the storage key of the record.
func (r *Record) Key() Key {
	return Key{Kind: r.Kind, CatalogueID: r.CatalogueID, ID: r.ID}
}

// IsPublic reports whether the record is a public mirror copy.
func (r *Record) IsPublic() bool {
	return r.Metadata.Published
}

// Clone returns a deep copy. Stores hand out clones so that callers never
// share slices with each other.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Identifiers.AlternativeIdentifiers = slices.Clone(r.Identifiers.AlternativeIdentifiers)
	clone.References = References{
		Owner:     r.References.Owner,
		Providers: slices.Clone(r.References.Providers),
		Related:   slices.Clone(r.References.Related),
		Required:  slices.Clone(r.References.Required),
		Services:  slices.Clone(r.References.Services),
	}
	clone.Payload = slices.Clone(r.Payload)
	clone.EventLog = slices.Clone(r.EventLog)
	clone.refreshLatest()
	return &clone
}

// SameState reports whether two records are indistinguishable for the
// purposes of a lifecycle transition: flags, template status, references
// and payload all match. The event log and version are ignored.
func SameState(a, b *Record) bool {
	return a.Status == b.Status &&
		a.TemplateStatus == b.TemplateStatus &&
		a.Active == b.Active &&
		a.Suspended == b.Suspended &&
		a.Draft == b.Draft &&
		a.Name == b.Name &&
		a.References.Owner == b.References.Owner &&
		slices.Equal(a.References.Providers, b.References.Providers) &&
		slices.Equal(a.References.Related, b.References.Related) &&
		slices.Equal(a.References.Required, b.References.Required) &&
		slices.Equal(a.References.Services, b.References.Services) &&
		slices.Equal(a.Identifiers.AlternativeIdentifiers, b.Identifiers.AlternativeIdentifiers) &&
		jsonEqual(a.Payload, b.Payload)
}

func jsonEqual(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}

	var left, right any
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return string(a) == string(b)
	}

	leftBytes, _ := json.Marshal(left)
	rightBytes, _ := json.Marshal(right)
	return string(leftBytes) == string(rightBytes)
}
