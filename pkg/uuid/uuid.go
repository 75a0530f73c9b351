// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package uuid mints the random identifiers of the catalogue: request ids,
fallback record ids and the suffix of minted PIDs.

Values are version 7, so ids minted later sort after earlier ones.
*/
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string. If the clock sequence cannot be read it
// degrades to a random UUIDv4 instead of failing.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
