// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/ctxutil"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/respond"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", apperr.NotFound("service"), http.StatusNotFound, apperr.CodeNotFound},
		{"validation", apperr.Validationf("draft %q cannot be verified", "x"), http.StatusBadRequest, apperr.CodeValidation},
		{"plain error hidden", errors.New("pq: connection reset"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request = request.WithContext(ctxutil.WithRequestID(request.Context(), "req-7"))
			recorder := httptest.NewRecorder()

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantCode, recorder.Code)
			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Code)
			assert.Equal(t, "req-7", body.RequestID)
			assert.NotContains(t, body.Error, "pq:")
		})
	}
}

func TestPaginatedEmptyWindow(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, pagination.Envelope[string]{})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"results":[]`)
}
