// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package convert parses optional query-string values.

Malformed input falls back to a default instead of failing the request; use
strconv directly where a malformed value must be reported.
*/
package convert

import (
	"strconv"
)

// ToIntD converts s to an int, returning def if s is empty or malformed.
func ToIntD(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ToBool parses "true", "1", "false", "0" and the other forms accepted by
// [strconv.ParseBool]. Empty or malformed input reads as false.
func ToBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}
