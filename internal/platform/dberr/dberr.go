// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

// uniqueViolation is the Postgres SQLSTATE for a unique-constraint violation.
const uniqueViolation = "23505"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// The action name ends up in the internal cause so logs can tell which
// statement failed without leaking SQL to clients.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource").WithCause(fmt.Errorf("%s: %w", action, err))
	}

	// 2. Duplicate keys
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("Resource already exists").WithCause(fmt.Errorf("%s: %w", action, err))
	}

	// 3. Everything else is an internal failure
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
