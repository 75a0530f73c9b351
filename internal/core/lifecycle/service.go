// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package lifecycle governs the status, active, suspended and draft flags of
catalogue records.

Every administrative action loads the record, computes the target state,
returns early when nothing would change, appends an event and persists with
an optimistic version check. Each write then clears the read cache and
refreshes the record's public mirror if one exists. Actions on providers and
resources are propagated to their dependents by the cascade in cascade.go.
*/
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/mirror"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/vocabulary"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/cache"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/ctxutil"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/metrics"
)

// DefaultAuditScanLimit bounds how many records an audit-filtered listing
// classifies in memory.
const DefaultAuditScanLimit = 1000

// Options tunes a [Service].
type Options struct {
	// HomeCatalogue is used when a caller names no catalogue.
	HomeCatalogue string

	// AuditScanLimit caps in-memory audit classification. Zero means
	// [DefaultAuditScanLimit].
	AuditScanLimit int

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Service is the lifecycle state machine.
type Service struct {
	records    record.Repository
	vocabulary *vocabulary.Registry
	mirrors    *mirror.Synchronizer
	cache      cache.Cache
	metrics    *metrics.Metrics
	logger     *slog.Logger
	flight     singleflight.Group

	homeCatalogue  string
	auditScanLimit int
	now            func() time.Time
}

/*
NewService wires the lifecycle state machine.

Parameters:
  - records: record.Repository
  - registry: *vocabulary.Registry (parsed status vocabulary)
  - mirrors: *mirror.Synchronizer
  - readCache: cache.Cache (cache.Nop disables caching)
  - m: *metrics.Metrics (may be nil)
  - logger: *slog.Logger
  - options: Options

Returns:
  - *Service
*/
func NewService(
	records record.Repository,
	registry *vocabulary.Registry,
	mirrors *mirror.Synchronizer,
	readCache cache.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
	options Options,
) *Service {
	if options.HomeCatalogue == "" {
		options.HomeCatalogue = "eosc"
	}
	if options.AuditScanLimit <= 0 {
		options.AuditScanLimit = DefaultAuditScanLimit
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		records:        records,
		vocabulary:     registry,
		mirrors:        mirrors,
		cache:          readCache,
		metrics:        m,
		logger:         logger,
		homeCatalogue:  options.HomeCatalogue,
		auditScanLimit: options.AuditScanLimit,
		now:            options.Clock,
	}
}

// HomeCatalogue returns the default catalogue id.
func (service *Service) HomeCatalogue() string {
	return service.homeCatalogue
}

// # Reads

// Get returns a record of the home catalogue.
func (service *Service) Get(context context.Context, kind record.Kind, id string) (*record.Record, error) {
	return service.GetForCatalogue(context, kind, service.homeCatalogue, id)
}

/*
GetForCatalogue returns a record through the read cache.

Description: Concurrent misses for the same key share one repository call.
The fill is tied to the cache generation observed before the repository
read, so a write that lands in between keeps the loaded copy out of the
cache. Cache failures are logged and fall through to the repository.

Parameters:
  - context: context.Context
  - kind: record.Kind
  - catalogueID: string (empty for the home catalogue)
  - id: string

Returns:
  - *record.Record: A copy owned by the caller
  - error: NotFound or repository failures
*/
func (service *Service) GetForCatalogue(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	key := service.key(kind, catalogueID, id)
	cacheKey := cache.Key(string(key.Kind), key.CatalogueID, key.ID)

	var cached record.Record
	hit, err := service.cache.Get(context, cache.ScopeRecords, cacheKey, &cached)
	if err != nil {
		service.log(context).WarnContext(context, "cache_read_failed", slog.Any("error", err))
	}
	if hit {
		service.metrics.ObserveCache("hit")
		cached.NormalizeEvents()
		return &cached, nil
	}
	service.metrics.ObserveCache("miss")

	shared, err, _ := service.flight.Do(cacheKey, func() (any, error) {
		generation, genErr := service.cache.Generation(context, cache.ScopeRecords)
		loaded, err := service.records.Get(context, key)
		if err != nil {
			return nil, err
		}
		service.fill(context, genErr, generation, cacheKey, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return shared.(*record.Record).Clone(), nil
}

// # Write Helpers

func (service *Service) key(kind record.Kind, catalogueID, id string) record.Key {
	if catalogueID == "" {
		catalogueID = service.homeCatalogue
	}
	return record.Key{Kind: kind, CatalogueID: catalogueID, ID: id}
}

// load reads a private record straight from the repository. Writes never
// start from a cached copy, so the version they carry is current.
func (service *Service) load(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	r, err := service.records.Get(context, service.key(kind, catalogueID, id))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// loadPrivate is load plus a refusal of public mirror copies, which only
// change through their private record.
func (service *Service) loadPrivate(context context.Context, kind record.Kind, catalogueID, id string) (*record.Record, error) {
	r, err := service.load(context, kind, catalogueID, id)
	if err != nil {
		return nil, err
	}
	if r.IsPublic() {
		return nil, apperr.Validationf("public %s %q cannot be changed directly; change %q instead",
			r.Kind, r.ID, r.Identifiers.OriginalID)
	}
	return r, nil
}

// actor attributes events to the authenticated caller.
func (service *Service) actor(context context.Context) record.Actor {
	claims := ctxutil.GetAuthUser(context)
	if claims == nil {
		return record.Actor{Name: "system"}
	}
	return record.Actor{Name: claims.Username, Email: claims.Email}
}

func (service *Service) event(context context.Context, eventType record.EventType, action record.ActionType, comment string) record.Event {
	return record.NewEvent(eventType, action, service.actor(context), comment, service.now())
}

func (service *Service) touch(context context.Context, r *record.Record) {
	r.Metadata.ModifiedBy = service.actor(context).Email
	r.Metadata.ModifiedAt = service.now().UTC()
}

/*
save persists r and runs the post-write steps.

Description: After the versioned update the read cache is cleared. If r
has a public mirror it is refreshed while r stays approved, and removed once
r is pending or rejected.
Mirror failures are logged; the private write already succeeded and the
mirror can be re-synchronised explicitly.
*/
func (service *Service) save(context context.Context, r *record.Record) error {
	if err := service.records.Update(context, r); err != nil {
		return err
	}
	service.invalidate(context)
	service.syncMirror(context, r)
	return nil
}

func (service *Service) syncMirror(context context.Context, r *record.Record) {
	logger := service.log(context)

	exists, err := service.mirrors.Exists(context, r)
	if err != nil || !exists {
		if err != nil {
			logger.WarnContext(context, "public_mirror_lookup_failed", slog.String("id", r.ID), slog.Any("error", err))
		}
		return
	}

	if r.Status == record.StatusRejected || r.Status == record.StatusPending {
		err = service.mirrors.Delete(context, r)
	} else {
		_, err = service.mirrors.Update(context, r)
	}
	if err != nil {
		logger.ErrorContext(context, "public_mirror_sync_failed",
			slog.String("kind", string(r.Kind)),
			slog.String("id", r.ID),
			slog.Any("error", err),
		)
		return
	}
	service.invalidate(context)
}

// log returns the request logger, or the service logger for background work.
func (service *Service) log(context context.Context) *slog.Logger {
	return ctxutil.LoggerOr(context, service.logger)
}

// fill stores a freshly read value unless the cache was invalidated since
// generation was observed. genErr is the error of that observation; a
// failed observation skips the fill.
func (service *Service) fill(context context.Context, genErr error, generation uint64, key string, value any) {
	logger := service.log(context)
	if genErr != nil {
		logger.WarnContext(context, "cache_write_failed", slog.Any("error", genErr))
		return
	}

	stored, err := service.cache.SetIfGeneration(context, cache.ScopeRecords, generation, key, value)
	if err != nil {
		logger.WarnContext(context, "cache_write_failed", slog.Any("error", err))
		return
	}
	if !stored {
		logger.DebugContext(context, "cache_fill_discarded", slog.String("key", key))
	}
}

// invalidate clears every cached read. Called at the end of each write.
func (service *Service) invalidate(context context.Context) {
	if err := service.cache.Invalidate(context, cache.ScopeRecords); err != nil {
		service.log(context).ErrorContext(context, "cache_invalidate_failed", slog.Any("error", err))
	}
}
