// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/database/schema"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/dberr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

// # PostgreSQL Repository

// PostgresRepository stores each record as a JSONB document next to the
// handful of columns the index queries filter on.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed record store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var recordTable = schema.CatalogueRecord

func (repository *PostgresRepository) Get(context context.Context, key Key) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		recordTable.Document, recordTable.Version, recordTable.Table,
		recordTable.Kind, recordTable.CatalogueID, recordTable.ID,
	)

	var document []byte
	var version int64
	err := repository.pool.QueryRow(context, query, string(key.Kind), key.CatalogueID, key.ID).Scan(&document, &version)
	if err != nil {
		return nil, dberr.Wrap(err, "get_"+string(key.Kind))
	}

	return decodeRecord(document, version)
}

func (repository *PostgresRepository) Exists(context context.Context, key Key) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3)`,
		recordTable.Table, recordTable.Kind, recordTable.CatalogueID, recordTable.ID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, string(key.Kind), key.CatalogueID, key.ID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "exists_"+string(key.Kind))
	}
	return exists, nil
}

/*
Create inserts a new record at version 1.

Returns:
  - error: Conflict when (kind, catalogue, id) is taken
*/
func (repository *PostgresRepository) Create(context context.Context, r *Record) error {
	r.Version = 1
	document, err := json.Marshal(r)
	if err != nil {
		return apperr.Internal(fmt.Errorf("encode record: %w", err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11)
	`,
		recordTable.Table,
		recordTable.Kind, recordTable.CatalogueID, recordTable.ID, recordTable.OwnerID, recordTable.Name,
		recordTable.Status, recordTable.Active, recordTable.Suspended, recordTable.Draft, recordTable.Published,
		recordTable.Version, recordTable.Document,
	)

	_, err = repository.pool.Exec(context, query,
		string(r.Kind), r.CatalogueID, r.ID, r.References.Owner, r.Name,
		string(r.Status), r.Active, r.Suspended, r.Draft, r.Metadata.Published,
		document,
	)
	if err != nil {
		return dberr.Wrap(err, "create_"+string(r.Kind))
	}
	return nil
}

/*
Update replaces the stored document if its version still equals r.Version.

Description: The version predicate sits in the WHERE clause, so the check
and the write are one statement. When no row matched, a follow-up existence
check tells a missing record (NotFound) from a stale one (Conflict).

Parameters:
  - context: context.Context
  - r: *Record (Version is the version the caller read; bumped on success)

Returns:
  - error: NotFound, Conflict or a wrapped database error
*/
func (repository *PostgresRepository) Update(context context.Context, r *Record) error {
	expected := r.Version
	r.Version = expected + 1

	document, err := json.Marshal(r)
	if err != nil {
		r.Version = expected
		return apperr.Internal(fmt.Errorf("encode record: %w", err))
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = NOW()
		WHERE %s = $10 AND %s = $11 AND %s = $12 AND %s = $13
	`,
		recordTable.Table,
		recordTable.OwnerID, recordTable.Name, recordTable.Status, recordTable.Active, recordTable.Suspended,
		recordTable.Draft, recordTable.Published, recordTable.Version, recordTable.Document, recordTable.UpdatedAt,
		recordTable.Kind, recordTable.CatalogueID, recordTable.ID, recordTable.Version,
	)

	tag, err := repository.pool.Exec(context, query,
		r.References.Owner, r.Name, string(r.Status), r.Active, r.Suspended,
		r.Draft, r.Metadata.Published, r.Version, document,
		string(r.Kind), r.CatalogueID, r.ID, expected,
	)
	if err != nil {
		r.Version = expected
		return dberr.Wrap(err, "update_"+string(r.Kind))
	}

	if tag.RowsAffected() == 0 {
		r.Version = expected
		exists, err := repository.Exists(context, r.Key())
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(string(r.Kind))
		}
		return apperr.Conflict(string(r.Kind) + " was modified concurrently: " + r.ID)
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, key Key) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		recordTable.Table, recordTable.Kind, recordTable.CatalogueID, recordTable.ID,
	)

	tag, err := repository.pool.Exec(context, query, string(key.Kind), key.CatalogueID, key.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_"+string(key.Kind))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(string(key.Kind))
	}
	return nil
}

func (repository *PostgresRepository) ListByOwner(context context.Context, kind Kind, catalogueID, owner string) ([]*Record, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
		ORDER BY %s ASC
	`,
		recordTable.Document, recordTable.Version, recordTable.Table,
		recordTable.Kind, recordTable.CatalogueID, recordTable.OwnerID,
		recordTable.ID,
	)

	rows, err := repository.pool.Query(context, query, string(kind), catalogueID, owner)
	if err != nil {
		return nil, dberr.Wrap(err, "list_"+string(kind)+"_by_owner")
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		var document []byte
		var version int64
		if err := rows.Scan(&document, &version); err != nil {
			return nil, dberr.Wrap(err, "scan_"+string(kind))
		}
		r, err := decodeRecord(document, version)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, dberr.Wrap(rows.Err(), "iterate_"+string(kind))
}

/*
Search returns one window of records matching filter, ordered by id.

Description: COUNT(*) OVER() yields the total with the page. A window that
starts past the last row has no rows to carry that total, so the count is
then fetched separately.

Parameters:
  - context: context.Context
  - filter: Filter
  - from: int (zero-based offset)
  - quantity: int (window size)

Returns:
  - pagination.Envelope[*Record]: The window and total
  - error: Database execution errors
*/
func (repository *PostgresRepository) Search(context context.Context, filter Filter, from, quantity int) (pagination.Envelope[*Record], error) {
	from, quantity = max(from, 0), max(quantity, 0)
	where, args := filter.whereClause()

	query := fmt.Sprintf(`
		SELECT %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		%s
		ORDER BY %s ASC, %s ASC
		LIMIT $%d OFFSET $%d
	`,
		recordTable.Document, recordTable.Version,
		recordTable.Table,
		where,
		recordTable.ID, recordTable.CatalogueID,
		len(args)+1, len(args)+2,
	)

	rows, err := repository.pool.Query(context, query, append(args, quantity, from)...)
	if err != nil {
		return pagination.Envelope[*Record]{}, dberr.Wrap(err, "search_records")
	}
	defer rows.Close()

	total := -1
	results := make([]*Record, 0, quantity)
	for rows.Next() {
		var document []byte
		var version int64
		if err := rows.Scan(&document, &version, &total); err != nil {
			return pagination.Envelope[*Record]{}, dberr.Wrap(err, "scan_record")
		}
		r, err := decodeRecord(document, version)
		if err != nil {
			return pagination.Envelope[*Record]{}, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return pagination.Envelope[*Record]{}, dberr.Wrap(err, "iterate_records")
	}

	if total < 0 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, recordTable.Table, where)
		if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
			return pagination.Envelope[*Record]{}, dberr.Wrap(err, "count_records")
		}
	}

	_, to := pagination.Window(total, from, quantity)
	return pagination.Envelope[*Record]{Total: total, From: from, To: to, Results: results}, nil
}

// whereClause renders the filter as a WHERE clause with positional arguments.
func (filter Filter) whereClause() (string, []any) {
	var conditions []string
	var args []any

	add := func(column, operator string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, operator, len(args)))
	}

	if filter.Kind != "" {
		add(recordTable.Kind, "=", string(filter.Kind))
	}
	if filter.CatalogueID != "" {
		add(recordTable.CatalogueID, "=", filter.CatalogueID)
	}
	if filter.Owner != "" {
		add(recordTable.OwnerID, "=", filter.Owner)
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", recordTable.Status, len(args)))
	}
	if filter.Active != nil {
		add(recordTable.Active, "=", *filter.Active)
	}
	if filter.Suspended != nil {
		add(recordTable.Suspended, "=", *filter.Suspended)
	}
	if filter.Draft != nil {
		add(recordTable.Draft, "=", *filter.Draft)
	}
	if filter.Published != nil {
		add(recordTable.Published, "=", *filter.Published)
	}
	if filter.Keyword != "" {
		add("lower("+recordTable.Name+")", "LIKE", "%"+strings.ToLower(filter.Keyword)+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func decodeRecord(document []byte, version int64) (*Record, error) {
	r := &Record{}
	if err := json.Unmarshal(document, r); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode record: %w", err))
	}
	r.Version = version
	r.NormalizeEvents()
	return r, nil
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*MemoryRepository)(nil)
