// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package validate collects field-level problems of a catalogue record and
// reports them as one [apperr.AppError].
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

var (
	// identifierRegex matches record ids: letters, digits, '-' and '_'.
	// Dots are reserved for public mirror ids.
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator accumulates failures through a chainable API. It is not safe
// for concurrent use; create one per record.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the value has more than max characters.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Identifier fails if a non-empty value is not a private record id.
func (v *Validator) Identifier(field, value string) *Validator {
	if value != "" && !identifierRegex.MatchString(value) {
		v.add(field, "Must contain only letters, digits, '-' and '_'")
	}
	return v
}

// Identifiers applies [Validator.Identifier] to every element of values.
func (v *Validator) Identifiers(field string, values []string) *Validator {
	for index, value := range values {
		v.Identifier(fmt.Sprintf("%s[%d]", field, index), value)
	}
	return v
}

// URL fails if a non-empty value is not an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	if value == "" {
		return v
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		v.add(field, "Must be an absolute http or https URL")
	}
	return v
}

// OneOf fails if the value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if !slices.Contains(allowed, value) {
		v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	}
	return v
}

// Custom adds message for field when failed is true.
//
// # Example
//
//	v.Custom("owner", owner == id, "A record cannot own itself")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR carrying every failure, or nil. Call it at
// the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
