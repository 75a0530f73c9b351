// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package pagination

// Envelope is one window over an ordered result set.
type Envelope[T any] struct {
	Total   int `json:"total"`
	From    int `json:"from"`
	To      int `json:"to"`
	Results []T `json:"results"`
}

// Window returns the half-open bounds [from, to) of a window of quantity
// items starting at from, clipped to total. Negative inputs count as 0.
func Window(total, from, quantity int) (int, int) {
	from = max(from, 0)
	quantity = max(quantity, 0)

	if from >= total {
		return total, total
	}
	return from, min(from+quantity, total)
}

/*
Reconcile rebuilds a page envelope over a list that was filtered in memory
after the index query produced prior.

Description: The prior envelope describes the unfiltered index result and
is therefore wrong for the filtered list; only its position is carried
over when from is negative. Total becomes len(list), results are
list[from:to] and to = min(from+quantity, total). When from >= total the
results are empty and To equals Total.

Parameters:
  - list: []T (already filtered, in final order)
  - from: int (zero-based window start)
  - quantity: int (window size)
  - prior: Envelope[T] (index envelope before filtering)

Returns:
  - Envelope[T]: The reconciled window
*/
func Reconcile[T any](list []T, from, quantity int, prior Envelope[T]) Envelope[T] {
	if from < 0 {
		from = prior.From
	}

	total := len(list)
	start, end := Window(total, from, quantity)

	results := make([]T, end-start)
	copy(results, list[start:end])

	return Envelope[T]{
		Total:   total,
		From:    max(from, 0),
		To:      end,
		Results: results,
	}
}
