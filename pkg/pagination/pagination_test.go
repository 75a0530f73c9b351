// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected pagination.Params
	}{
		{"defaults", "", pagination.Params{From: 0, Quantity: pagination.DefaultQuantity}},
		{"explicit", "?from=20&quantity=5", pagination.Params{From: 20, Quantity: 5}},
		{"negative from", "?from=-3", pagination.Params{From: 0, Quantity: pagination.DefaultQuantity}},
		{"negative quantity", "?quantity=-1", pagination.Params{From: 0, Quantity: 0}},
		{"capped quantity", "?quantity=5000", pagination.Params{From: 0, Quantity: pagination.MaxQuantity}},
		{"garbage", "?from=abc&quantity=xyz", pagination.Params{From: 0, Quantity: pagination.DefaultQuantity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/api/v1/service"+tt.query, nil)
			assert.Equal(t, tt.expected, pagination.FromRequest(request))
		})
	}
}

/*
TestReconcile_Bounds checks every window over lists of several sizes: the
result length is clamp(quantity, 0, N-from) and To is min(from+quantity, N).
*/
func TestReconcile_Bounds(t *testing.T) {
	for _, size := range []int{0, 1, 7, 10} {
		list := make([]int, size)
		for i := range list {
			list[i] = i
		}

		for from := 0; from <= size+5; from++ {
			for quantity := 0; quantity <= size+5; quantity++ {
				page := pagination.Reconcile(list, from, quantity, pagination.Envelope[int]{Total: 1000, To: 50})

				expectedLen := 0
				if from < size {
					expectedLen = min(quantity, size-from)
				}

				assert.Equal(t, size, page.Total)
				assert.Len(t, page.Results, expectedLen, "size=%d from=%d quantity=%d", size, from, quantity)
				assert.Equal(t, min(from+quantity, size), page.To, "size=%d from=%d quantity=%d", size, from, quantity)
				if expectedLen > 0 {
					assert.Equal(t, from, page.Results[0])
				}
			}
		}
	}
}

func TestReconcile_EdgeCases(t *testing.T) {
	list := []string{"a", "b", "c"}

	t.Run("from beyond total", func(t *testing.T) {
		page := pagination.Reconcile(list, 5, 2, pagination.Envelope[string]{})
		assert.Empty(t, page.Results)
		assert.Equal(t, 3, page.To)
	})

	t.Run("quantity covers remainder", func(t *testing.T) {
		page := pagination.Reconcile(list, 1, 10, pagination.Envelope[string]{})
		assert.Equal(t, []string{"b", "c"}, page.Results)
		assert.Equal(t, 3, page.To)
	})

	t.Run("negative from falls back to prior position", func(t *testing.T) {
		page := pagination.Reconcile(list, -1, 1, pagination.Envelope[string]{From: 2})
		assert.Equal(t, []string{"c"}, page.Results)
		assert.Equal(t, 2, page.From)
	})

	t.Run("results do not alias input", func(t *testing.T) {
		page := pagination.Reconcile(list, 0, 2, pagination.Envelope[string]{})
		page.Results[0] = "z"
		assert.Equal(t, "a", list[0])
	})
}
