package service

import "github.com/bookshelf/library-api/internal/core/ports"

const (
	defaultLimit = 20
	maxLimit     = 100
)

// normalizeFilter applies the default page size and caps it at maxLimit.
func normalizeFilter(f ports.ListFilter) ports.ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
