// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package vocabulary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/database/schema"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/dberr"
)

// PostgresSource reads vocabulary entries from catalogue.vocabulary.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (source *PostgresSource) Entries(context context.Context, types []string) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC`,
		schema.CatalogueVocabulary.ID, schema.CatalogueVocabulary.Name, schema.CatalogueVocabulary.Type,
		schema.CatalogueVocabulary.Table, schema.CatalogueVocabulary.Type, schema.CatalogueVocabulary.ID,
	)

	rows, err := source.pool.Query(context, query, types)
	if err != nil {
		return nil, dberr.Wrap(err, "list_vocabulary")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Type); err != nil {
			return nil, dberr.Wrap(err, "scan_vocabulary")
		}
		entries = append(entries, entry)
	}

	return entries, dberr.Wrap(rows.Err(), "iterate_vocabulary")
}
