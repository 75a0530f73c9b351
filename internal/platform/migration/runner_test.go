// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://cat:pw@db:5432/catalogue", "pgx5://cat:pw@db:5432/catalogue"},
		{"postgresql://db/catalogue?sslmode=disable", "pgx5://db/catalogue?sslmode=disable"},
		{"pgx5://db/catalogue", "pgx5://db/catalogue"},
		{"host=db dbname=catalogue", "host=db dbname=catalogue"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pgx5DSN(tt.in), tt.in)
	}
}
