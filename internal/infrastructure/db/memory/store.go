// Package memory provides mutex-guarded, process-local repositories. It backs
// the "memory" driver used for development and end-to-end HTTP tests.
package memory

import (
	"sort"

	"github.com/bookshelf/library-api/internal/core/ports"
)

// page returns the ids selected by f, in ascending order.
func page[T any](rows map[int64]T, f ports.ListFilter) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if f.Offset >= len(ids) {
		return nil
	}
	ids = ids[f.Offset:]
	if f.Limit > 0 && len(ids) > f.Limit {
		ids = ids[:f.Limit]
	}
	return ids
}
