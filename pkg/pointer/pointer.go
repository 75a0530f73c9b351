// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package pointer builds pointers to literals, mostly for the optional
// boolean fields of record filters.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
