// Package rank orders search results on the client.
package rank

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/usestring/rugsearch/pkg/types"
)

// ParseSortKey resolves a sort key name. Empty selects SortByScore.
func ParseSortKey(s string) (types.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score", "relevance":
		return types.SortByScore, nil
	case "price":
		return types.SortByPrice, nil
	}
	return "", fmt.Errorf("unknown sort key %q (use score or price)", s)
}

// Order returns results sorted by key in a new slice; results is not modified.
//
// SortByScore is descending, SortByPrice ascending. Entries missing the key's
// field sort after every entry that has it. The sort is stable, so ties and
// missing entries keep their input order and Order is idempotent.
// Unknown keys sort by score.
func Order(results []types.SearchResult, key types.SortKey) []types.SearchResult {
	out := slices.Clone(results)
	if out == nil {
		out = []types.SearchResult{}
	}

	switch key {
	case types.SortByPrice:
		slices.SortStableFunc(out, func(a, b types.SearchResult) int {
			return compareMissingLast(a.Price, b.Price, cmp.Compare[float64])
		})
	default:
		slices.SortStableFunc(out, func(a, b types.SearchResult) int {
			return compareMissingLast(a.Score, b.Score, func(x, y float64) int {
				return cmp.Compare(y, x)
			})
		})
	}
	return out
}

// compareMissingLast orders present values with fn and puts nil after them.
func compareMissingLast(a, b *float64, fn func(x, y float64) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return fn(*a, *b)
}
