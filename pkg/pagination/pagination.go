// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// Catalogue listings are offset windows: a request names the zero-based
// position of the first item ("from") and the window size ("quantity"), and
// the response reports the total and the exclusive end ("to") of the window.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultQuantity is the window size if not specified.
	DefaultQuantity = 10
	// MaxQuantity is the upper bound for a single window.
	MaxQuantity = 1000
)

// Params holds the parsed window from a request's query string.
type Params struct {
	From     int
	Quantity int
}

// FromRequest parses "from" and "quantity" query parameters from an HTTP request.
//
// # Clamping
//
// A negative or unparsable "from" becomes 0. A missing or unparsable
// "quantity" becomes [DefaultQuantity]; negative values become 0 and values
// above [MaxQuantity] are capped.
func FromRequest(r *http.Request) Params {
	from := parseIntParam(r, "from", 0)
	quantity := parseIntParam(r, "quantity", DefaultQuantity)

	if from < 0 {
		from = 0
	}

	switch {
	case quantity < 0:
		quantity = 0
	case quantity > MaxQuantity:
		quantity = MaxQuantity
	}

	return Params{From: from, Quantity: quantity}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
