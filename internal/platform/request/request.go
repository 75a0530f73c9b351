// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package request extracts route parameters, bodies and caller identity from
HTTP requests.

Handlers never touch chi or the context keys directly, so decoding errors
and missing credentials always surface as the same [apperr.AppError].
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/ctxutil"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/validate"
)

// maxBodyBytes caps record documents accepted from callers.
const maxBodyBytes = 4 << 20

/*
DecodeJSON reads the request body into target.

Parameters:
  - request: *http.Request
  - target: any (pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if the body is malformed or too large
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID retrieves the record id from the route.
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Param retrieves a named route parameter.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims returns the caller's claims, or nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the claims.

Returns:
  - *sec.AuthClaims: The authenticated caller
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
