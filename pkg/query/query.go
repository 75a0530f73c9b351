// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package query parses list-valued query parameters.
package query

import (
	"strings"
)

// StringSlice splits a comma-separated parameter such as
// "approved resource,pending resource" into trimmed, non-empty values.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var res []string
	for v := range strings.SplitSeq(val, ",") {
		if clean := strings.TrimSpace(v); clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
