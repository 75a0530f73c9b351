// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package slug derives record ids from display names.
//
// # Usage
//
// A provider registered as "Université de Genève" without an id is stored
// as "universite-de-geneve". The result only holds [a-z0-9-], so it is
// always a valid private id and never contains the public id separator.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps derived ids; longer names are cut at a word boundary.
const MaxLength = 64

// From converts name into a lowercase ASCII id. It returns "" when name
// holds no letter or digit that survives accent folding.
func From(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, transform.RemoveFunc(isMn)), name)
	if err != nil {
		folded = name
	}

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			builder.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return truncate(builder.String())
}

func truncate(id string) string {
	if len(id) <= MaxLength {
		return id
	}
	id = id[:MaxLength]
	if cut := strings.LastIndexByte(id, '-'); cut > 0 {
		id = id[:cut]
	}
	return strings.TrimRight(id, "-")
}

// isMn reports whether r is a non-spacing mark such as a combining accent.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
