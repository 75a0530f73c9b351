// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/cache"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

// BrowseQuery is a filtered, paginated listing request.
type BrowseQuery struct {
	Filter   record.Filter `json:"filter"`
	From     int           `json:"from"`
	Quantity int           `json:"quantity"`

	// AuditState, when set, keeps only records whose event log classifies
	// to it. The index cannot evaluate it, so the filter runs in memory.
	AuditState record.AuditState `json:"audit_state,omitempty"`
}

/*
Browse lists records matching query.

Description: Plain queries go to the index and are cached under a hash of
the query. Queries with an audit state scan up to the audit scan limit,
classify every record, and rebuild the page with [pagination.Reconcile].
A scan that hits the limit is logged and counted; its totals then cover
only the scanned records.

Parameters:
  - context: context.Context
  - query: BrowseQuery (empty catalogue means the home catalogue)

Returns:
  - pagination.Envelope[*record.Record]: One page of records
  - error: Repository failures
*/
func (service *Service) Browse(context context.Context, query BrowseQuery) (pagination.Envelope[*record.Record], error) {
	defer service.metrics.ObserveOperation("browse", time.Now())

	if query.Filter.CatalogueID == "" {
		query.Filter.CatalogueID = service.homeCatalogue
	}

	if query.AuditState != "" {
		list, prior, err := service.scan(context, query.Filter)
		if err != nil {
			return pagination.Envelope[*record.Record]{}, err
		}

		matched := make([]*record.Record, 0, len(list))
		for _, r := range list {
			if record.ClassifyAudit(r.EventLog) == query.AuditState {
				matched = append(matched, r)
			}
		}
		return pagination.Reconcile(matched, query.From, query.Quantity, prior), nil
	}

	cacheKey, err := cache.HashKey("browse", query)
	if err != nil {
		return pagination.Envelope[*record.Record]{}, err
	}

	var cached pagination.Envelope[*record.Record]
	hit, err := service.cache.Get(context, cache.ScopeRecords, cacheKey, &cached)
	if err != nil {
		service.log(context).WarnContext(context, "cache_read_failed", slog.Any("error", err))
	}
	if hit {
		service.metrics.ObserveCache("hit")
		return cached, nil
	}
	service.metrics.ObserveCache("miss")

	generation, genErr := service.cache.Generation(context, cache.ScopeRecords)
	page, err := service.records.Search(context, query.Filter, query.From, query.Quantity)
	if err != nil {
		return pagination.Envelope[*record.Record]{}, err
	}
	service.fill(context, genErr, generation, cacheKey, page)
	return page, nil
}

/*
RandomForAudit returns a random sample of records due for an audit.

Description: Candidates are active, approved, private, submitted records
of kind whose latest audit is older than interval, or that were never
audited. The candidates are shuffled before the window is cut, so every
call yields a different sample.
*/
func (service *Service) RandomForAudit(context context.Context, kind record.Kind, catalogueID string, from, quantity int, interval time.Duration) (pagination.Envelope[*record.Record], error) {
	if catalogueID == "" {
		catalogueID = service.homeCatalogue
	}

	active, private, submitted := true, false, false
	filter := record.Filter{
		Kind:        kind,
		CatalogueID: catalogueID,
		Status:      []record.Status{record.StatusApproved},
		Active:      &active,
		Published:   &private,
		Draft:       &submitted,
	}

	list, prior, err := service.scan(context, filter)
	if err != nil {
		return pagination.Envelope[*record.Record]{}, err
	}

	cutoff := service.now().Add(-interval).UnixMilli()
	due := make([]*record.Record, 0, len(list))
	for _, r := range list {
		if r.LatestAuditEvent == nil || r.LatestAuditEvent.Date < cutoff {
			due = append(due, r)
		}
	}

	rand.Shuffle(len(due), func(i, j int) {
		due[i], due[j] = due[j], due[i]
	})
	return pagination.Reconcile(due, from, quantity, prior), nil
}

// scan reads up to the audit scan limit of records matching filter for
// in-memory filtering.
func (service *Service) scan(context context.Context, filter record.Filter) ([]*record.Record, pagination.Envelope[*record.Record], error) {
	page, err := service.records.Search(context, filter, 0, service.auditScanLimit)
	if err != nil {
		return nil, pagination.Envelope[*record.Record]{}, err
	}

	if page.Total > len(page.Results) {
		service.metrics.ObserveAuditScanTruncated()
		service.log(context).WarnContext(context, "audit_scan_truncated",
			slog.String("kind", string(filter.Kind)),
			slog.Int("total", page.Total),
			slog.Int("scanned", len(page.Results)),
		)
	}
	return page.Results, page, nil
}
