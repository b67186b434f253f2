package store

import (
	"context"

	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
)

// Filters are persisted per kind and revalidated on load: a missing or invalid
// persisted filter yields the kind's default. Changing the name filter only
// recomputes filtered lists; changing anything else also refetches watched
// lists.

func (s *Store[R, L, F]) filterKey() string { return string(s.cfg.Kind) }

func (s *Store[R, L, F]) Filters(ctx context.Context) F {
	return s.filters.Get(ctx, s.filterKey())
}

func (s *Store[R, L, F]) SetFilters(ctx context.Context, f F) error {
	return s.filters.Set(ctx, s.filterKey(), f)
}

func (s *Store[R, L, F]) UpdateFilters(ctx context.Context, fn func(F) F) (F, error) {
	return s.filters.Update(ctx, s.filterKey(), fn)
}

// ResetFilters restores the default filter.
func (s *Store[R, L, F]) ResetFilters(ctx context.Context) error {
	return s.filters.Reset(ctx, s.filterKey())
}

func (s *Store[R, L, F]) WatchFilters(ctx context.Context, fn func(F)) *cache.Watch[F] {
	return s.filters.Watch(ctx, s.filterKey(), fn)
}
