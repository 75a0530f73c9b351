// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
)

/*
TestAppError_Classification checks that wrapped errors keep their class.
*/
func TestAppError_Classification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", apperr.Validationf("bad %s", "term"), apperr.CodeValidation, http.StatusBadRequest},
		{"not_found", apperr.NotFound("Service x"), apperr.CodeNotFound, http.StatusNotFound},
		{"conflict", apperr.Conflict("exists"), apperr.CodeConflict, http.StatusConflict},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.status, ae.HTTPStatus)
			assert.True(t, apperr.HasCode(wrapped, tt.code))
		})
	}
}

/*
TestAppError_Helpers verifies the Is* predicates and cause chaining.
*/
func TestAppError_Helpers(t *testing.T) {
	cause := errors.New("driver failure")
	err := apperr.Conflict("stale version").WithCause(cause)

	assert.True(t, apperr.IsConflict(err))
	assert.False(t, apperr.IsNotFound(err))
	assert.False(t, apperr.IsValidation(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Service svc not found", apperr.NotFound("Service svc").Error())
	assert.Nil(t, apperr.As(errors.New("plain")))
}
