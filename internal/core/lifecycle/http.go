// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/middleware"
	requestutil "github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/request"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/respond"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/convert"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pointer"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/query"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/slice"
)

// defaultAuditIntervalDays is how long an audit stays fresh for the audit
// sample when the caller gives no interval.
const defaultAuditIntervalDays = 365

// # Handler Implementation

// Handler exposes the lifecycle [Service] over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a lifecycle [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
RegisterRoutes mounts the record endpoints under /{kind}.

# Routing Strategy

  - Discovery (Public): browsing and single-record reads. Anonymous callers
    only see active, unsuspended, submitted records.
  - Ownership (Authenticated): registration, edits, draft submission,
    activation and deletion. Allowed for staff and for administrators of
    the owning provider.
  - Administration (EPOT): verification, suspension, audits, moves and the
    public mirror.
*/
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/{kind}", func(kind chi.Router) {
		kind.Get("/", handler.browse)
		kind.Get("/{id}", handler.get)
		kind.Get("/{id}/audit-state", handler.auditState)

		kind.Group(func(owner chi.Router) {
			owner.Use(middleware.RequireAuth)

			owner.Post("/", handler.add)
			owner.Put("/{id}", handler.update)
			owner.Delete("/{id}", handler.delete)
			owner.Post("/{id}/draft/submit", handler.submitDraft)
			owner.Post("/{id}/publish", handler.publish)
		})

		kind.Group(func(staff chi.Router) {
			staff.Use(middleware.RequireRole(sec.RoleEPOT))

			staff.Get("/audit/sample", handler.auditSample)
			staff.Post("/{id}/verify", handler.verify)
			staff.Post("/{id}/suspend", handler.suspend)
			staff.Post("/{id}/audit", handler.audit)
			staff.Post("/{id}/move", handler.move)

			// Public mirror
			staff.Post("/{id}/public", handler.createPublic)
			staff.Put("/{id}/public", handler.resyncPublic)
			staff.Delete("/{id}/public", handler.deletePublic)
		})
	})
}

// # Request Payloads

// recordRequest is the inbound JSON schema for registration and edits.
type recordRequest struct {
	ID                     string                         `json:"id"`
	Name                   string                         `json:"name"`
	Draft                  bool                           `json:"draft"`
	Owner                  string                         `json:"owner"`
	Providers              []string                       `json:"providers"`
	Related                []string                       `json:"related"`
	Required               []string                       `json:"required"`
	Services               []string                       `json:"services"`
	AlternativeIdentifiers []record.AlternativeIdentifier `json:"alternative_identifiers"`
	Payload                json.RawMessage                `json:"payload"`
	Version                int64                          `json:"version"`
}

func (body recordRequest) toRecord(kind record.Kind, catalogueID string) *record.Record {
	return &record.Record{
		Kind:        kind,
		ID:          body.ID,
		CatalogueID: catalogueID,
		Name:        body.Name,
		Draft:       body.Draft,
		References: record.References{
			Owner:     body.Owner,
			Providers: body.Providers,
			Related:   body.Related,
			Required:  body.Required,
			Services:  body.Services,
		},
		Identifiers: record.Identifiers{AlternativeIdentifiers: body.AlternativeIdentifiers},
		Payload:     body.Payload,
		Version:     body.Version,
	}
}

type verifyRequest struct {
	Status string `json:"status"`
	Active *bool  `json:"active"`
}

type publishRequest struct {
	Active bool `json:"active"`
}

type suspendRequest struct {
	Suspend bool `json:"suspend"`
}

type auditRequest struct {
	ActionType record.ActionType `json:"action_type"`
	Comment    string            `json:"comment"`
}

type moveRequest struct {
	Owner   string `json:"owner"`
	Comment string `json:"comment"`
}

// # Response Views

// recordView decorates a record with its vocabulary terms.
type recordView struct {
	*record.Record
	StatusTerm   string `json:"status_term,omitempty"`
	TemplateTerm string `json:"template_term,omitempty"`
}

func (handler *Handler) view(r *record.Record) recordView {
	view := recordView{Record: r}
	if r.Status != "" {
		view.StatusTerm = handler.service.vocabulary.StatusTerm(r.Kind, r.Status)
	}
	if r.TemplateStatus != "" {
		view.TemplateTerm = handler.service.vocabulary.TemplateTerm(r.TemplateStatus)
	}
	return view
}

func (handler *Handler) page(page pagination.Envelope[*record.Record]) pagination.Envelope[recordView] {
	return pagination.Envelope[recordView]{
		Total:   page.Total,
		From:    page.From,
		To:      page.To,
		Results: slice.Map(page.Results, handler.view),
	}
}

// # Discovery Endpoints

/*
GET /api/v1/{kind}.

Description: Lists records of one kind.

Request:
  - catalogue: string (defaults to the home catalogue)
  - owner: string
  - keyword: string
  - status: string (comma-separated vocabulary terms)
  - active, suspended, draft, published: bool
  - audit_state: string (e.g. "valid_and_updated")
  - from, quantity: int

Response:
  - 200: pagination.Envelope[Record]
  - 400: ValidationError: Unknown kind, status term or audit state
*/
func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	kind, err := record.ParseKind(requestutil.Param(request, "kind"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := request.URL.Query()
	window := pagination.FromRequest(request)

	browse := BrowseQuery{
		Filter: record.Filter{
			Kind:        kind,
			CatalogueID: params.Get("catalogue"),
			Owner:       params.Get("owner"),
			Keyword:     params.Get("keyword"),
			Active:      boolParam(params, "active"),
			Suspended:   boolParam(params, "suspended"),
			Draft:       boolParam(params, "draft"),
			Published:   boolParam(params, "published"),
		},
		From:     window.From,
		Quantity: window.Quantity,
	}

	for _, term := range query.StringSlice(params.Get("status")) {
		status, err := handler.service.vocabulary.ParseStatus(kind, term)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		browse.Filter.Status = append(browse.Filter.Status, status)
	}

	if raw := params.Get("audit_state"); raw != "" {
		browse.AuditState, err = record.ParseAuditState(raw)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	claims := requestutil.Claims(request)
	if claims == nil || !claims.IsStaff() {
		browse.Filter.Active = pointer.To(true)
		browse.Filter.Suspended = pointer.To(false)
		browse.Filter.Draft = pointer.To(false)
	}

	page, err := handler.service.Browse(request.Context(), browse)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, handler.page(page))
}

/*
GET /api/v1/{kind}/{id}.

Request:
  - catalogue: string (defaults to the home catalogue)

Response:
  - 200: Record
  - 404: NotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.load(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.visible(request, r); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.view(r))
}

// auditState classifies the event log of one record. Hidden records are
// gated like [Handler.get].
func (handler *Handler) auditState(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.load(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.visible(request, r); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]record.AuditState{"audit_state": record.ClassifyAudit(r.EventLog)})
}

/*
GET /api/v1/{kind}/audit/sample.

Description: Random sample of records due for an audit.

Request:
  - interval: int (days since the last audit; default 365)
  - from, quantity: int
*/
func (handler *Handler) auditSample(writer http.ResponseWriter, request *http.Request) {
	kind, err := record.ParseKind(requestutil.Param(request, "kind"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := request.URL.Query()
	window := pagination.FromRequest(request)
	days := max(convert.ToIntD(params.Get("interval"), defaultAuditIntervalDays), 0)

	page, err := handler.service.RandomForAudit(request.Context(), kind, params.Get("catalogue"),
		window.From, window.Quantity, time.Duration(days)*24*time.Hour)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, handler.page(page))
}

// # Ownership Endpoints

/*
POST /api/v1/{kind}.

Description: Registers a record. Providers can be registered by any
authenticated user; resources only under a provider the caller administers.

Response:
  - 201: Record
  - 400: ValidationError
  - 403: Forbidden
  - 409: Conflict: Duplicate id
*/
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	kind, err := record.ParseKind(requestutil.Param(request, "kind"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body recordRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := body.toRecord(kind, request.URL.Query().Get("catalogue"))
	if input.CatalogueID == "" {
		input.CatalogueID = handler.service.HomeCatalogue()
	}
	if kind != record.KindProvider {
		if err := handler.authorize(request, input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	created, err := handler.service.Add(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, handler.view(created))
}

// PUT /api/v1/{kind}/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.loadOwned(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body recordRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := body.toRecord(r.Kind, r.CatalogueID)
	input.ID = r.ID

	updated, err := handler.service.Update(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(updated))
}

// DELETE /api/v1/{kind}/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.loadOwned(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), r.Kind, r.CatalogueID, r.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// POST /api/v1/{kind}/{id}/draft/submit.
func (handler *Handler) submitDraft(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.loadOwned(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	submitted, err := handler.service.TransformToNonDraft(request.Context(), r.Kind, r.CatalogueID, r.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(submitted))
}

/*
POST /api/v1/{kind}/{id}/publish.

Request:
  - active: bool

Response:
  - 200: Record
  - 400: ValidationError: The record was never approved
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.loadOwned(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body publishRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	published, err := handler.service.Publish(request.Context(), r.Kind, r.CatalogueID, r.ID, body.Active)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(published))
}

// # Administration Endpoints

/*
POST /api/v1/{kind}/{id}/verify.

Request:
  - status: string (vocabulary term, e.g. "approved provider")
  - active: bool (optional)
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body verifyRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	verified, err := handler.service.Verify(request.Context(), kind, catalogueID, id, body.Status, body.Active)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(verified))
}

func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body suspendRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	suspended, err := handler.service.Suspend(request.Context(), kind, catalogueID, id, body.Suspend)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(suspended))
}

func (handler *Handler) audit(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body auditRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	audited, err := handler.service.Audit(request.Context(), kind, catalogueID, id, body.Comment, body.ActionType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(audited))
}

func (handler *Handler) move(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body moveRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	moved, err := handler.service.Move(request.Context(), kind, catalogueID, id, body.Owner, body.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(moved))
}

// POST /api/v1/{kind}/{id}/public.
func (handler *Handler) createPublic(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreatePublicMirror(request.Context(), kind, catalogueID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, handler.view(created))
}

// PUT /api/v1/{kind}/{id}/public.
func (handler *Handler) resyncPublic(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.ResyncPublicMirror(request.Context(), kind, catalogueID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.view(updated))
}

// DELETE /api/v1/{kind}/{id}/public.
func (handler *Handler) deletePublic(writer http.ResponseWriter, request *http.Request) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeletePublicMirror(request.Context(), kind, catalogueID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Helpers

// keyOf extracts the record key from the route and the catalogue query
// parameter.
func keyOf(request *http.Request) (record.Kind, string, string, error) {
	kind, err := record.ParseKind(requestutil.Param(request, "kind"))
	if err != nil {
		return "", "", "", err
	}
	return kind, request.URL.Query().Get("catalogue"), requestutil.ID(request, "id"), nil
}

func (handler *Handler) load(request *http.Request) (*record.Record, error) {
	kind, catalogueID, id, err := keyOf(request)
	if err != nil {
		return nil, err
	}
	return handler.service.GetForCatalogue(request.Context(), kind, catalogueID, id)
}

// loadOwned loads the addressed record and checks that the caller may
// manage it.
func (handler *Handler) loadOwned(request *http.Request) (*record.Record, error) {
	r, err := handler.load(request)
	if err != nil {
		return nil, err
	}
	if err := handler.authorize(request, r); err != nil {
		return nil, err
	}
	return r, nil
}

// authorize admits staff and administrators of the provider owning r.
func (handler *Handler) authorize(request *http.Request, r *record.Record) error {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return err
	}
	if claims.IsStaff() {
		return nil
	}

	provider, err := handler.service.OwningProvider(request.Context(), r)
	if err != nil {
		return err
	}
	if !claims.AdministersProvider(provider.ID) {
		return apperr.Forbidden("You do not administer provider " + provider.ID)
	}
	return nil
}

// visible hides inactive, suspended and draft records from callers that do
// not manage them: anonymous callers get NotFound, others Forbidden.
func (handler *Handler) visible(request *http.Request, r *record.Record) error {
	if r.Active && !r.Suspended && !r.Draft {
		return nil
	}
	if handler.canManage(request, r) {
		return nil
	}
	if requestutil.Claims(request) == nil {
		return apperr.NotFound(string(r.Kind))
	}
	return apperr.Forbidden("Record is not visible to you")
}

func (handler *Handler) canManage(request *http.Request, r *record.Record) bool {
	return handler.authorize(request, r) == nil
}

// boolParam reads an optional boolean filter. Absent parameters stay nil.
func boolParam(params url.Values, key string) *bool {
	raw := params.Get(key)
	if raw == "" {
		return nil
	}
	return pointer.To(convert.ToBool(raw))
}
