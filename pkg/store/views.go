package store

import (
	"context"

	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
)

// ResourceIDs fetches, unless fresh or already in flight, the resources of a
// campaign that match the current server filters and display language, and
// returns the campaign's id list. The name filter never triggers a fetch.
func (s *Store[R, L, F]) ResourceIDs(ctx context.Context, campaignID string) []string {
	s.track(campaignID)
	f := s.Filters(ctx)
	lang := s.lang()
	_ = s.cfg.Query.Ensure(ctx, s.listKey(campaignID, lang, f), func(ctx context.Context) error {
		return s.fetchResources(ctx, campaignID, lang, f)
	})
	return clone(s.ids.Get(campaignID, nil))
}

// WatchResourceIDs calls fn with the id list of a campaign every time it
// changes. The list is fetched in the background and kept fresh while the
// Watch is open.
func (s *Store[R, L, F]) WatchResourceIDs(
	ctx context.Context,
	campaignID string,
	fn func([]string),
) *cache.Watch[[]string] {
	w := s.ids.Watch(campaignID, nil, fn)
	s.activate(w, campaignID)
	s.background(ctx, func(ctx context.Context) { s.ResourceIDs(ctx, campaignID) })
	return w
}

// FilteredResourceIDs returns the ids of a campaign whose name, in any
// language, contains the name filter. Matching ignores case and diacritics.
func (s *Store[R, L, F]) FilteredResourceIDs(ctx context.Context, campaignID string) []string {
	s.ResourceIDs(ctx, campaignID)
	s.refilter(campaignID)
	return clone(s.filtered.Get(campaignID, nil))
}

// WatchFilteredResourceIDs is the filtered counterpart of WatchResourceIDs.
func (s *Store[R, L, F]) WatchFilteredResourceIDs(
	ctx context.Context,
	campaignID string,
	fn func([]string),
) *cache.Watch[[]string] {
	w := s.filtered.Watch(campaignID, nil, fn)
	s.activate(w, campaignID)
	s.background(ctx, func(ctx context.Context) { s.FilteredResourceIDs(ctx, campaignID) })
	return w
}

// Resource fetches a resource unless fresh or already in flight, and returns
// the cached copy. It reports false before the first successful fetch and
// after deletion.
func (s *Store[R, L, F]) Resource(ctx context.Context, id string) (R, bool) {
	_ = s.cfg.Query.Ensure(ctx, s.resourceKey(id), func(ctx context.Context) error {
		return s.fetchResource(ctx, id)
	})
	e := s.lookup(id)
	return e.Value, e.Present
}

// WatchResource calls fn every time the cached copy of a resource is written or
// evicted.
func (s *Store[R, L, F]) WatchResource(
	ctx context.Context,
	id string,
	fn func(cache.Entry[R]),
) *cache.Watch[cache.Entry[R]] {
	dispose := s.resources.Subscribe(id, func(e cache.Entry[revision[R]]) {
		if fn != nil {
			fn(cache.Entry[R]{Value: e.Value.Value, Present: e.Present})
		}
	})
	w := cache.NewWatch(func() cache.Entry[R] { return s.lookup(id) }, dispose)
	s.watch(w, id)
	s.background(ctx, func(ctx context.Context) { s.Resource(ctx, id) })
	return w
}

// LocalizedResource is Resource projected into the display language. The
// projection is memoized until the resource or the language changes.
func (s *Store[R, L, F]) LocalizedResource(ctx context.Context, id string) (L, bool) {
	s.Resource(ctx, id)
	e := s.localized(id)
	return e.Value, e.Present
}

// WatchLocalizedResource calls fn with a fresh projection every time the
// resource is written or evicted, or the display language changes.
func (s *Store[R, L, F]) WatchLocalizedResource(
	ctx context.Context,
	id string,
	fn func(cache.Entry[L]),
) *cache.Watch[cache.Entry[L]] {
	notify := func() {
		if fn != nil {
			fn(s.localized(id))
		}
	}
	w := cache.NewWatch(
		func() cache.Entry[L] { return s.localized(id) },
		s.resources.Subscribe(id, func(cache.Entry[revision[R]]) { notify() }),
	)
	w.OnClose(s.cfg.Locale.OnChange(func(string) { notify() }))
	s.watch(w, id)
	s.background(ctx, func(ctx context.Context) { s.Resource(ctx, id) })
	return w
}

func (s *Store[R, L, F]) localized(id string) cache.Entry[L] {
	r, ok := s.resources.Lookup(id)
	if !ok {
		return cache.Entry[L]{}
	}
	lang := s.lang()
	s.mu.Lock()
	m, hit := s.memo[id]
	s.mu.Unlock()
	if hit && m.rev == r.Rev && m.lang == lang {
		return cache.Entry[L]{Value: m.value, Present: true}
	}
	v := s.cfg.Localize(lang, r.Value)
	s.mu.Lock()
	s.memo[id] = memo[L]{rev: r.Rev, lang: lang, value: v}
	s.mu.Unlock()
	return cache.Entry[L]{Value: v, Present: true}
}

// ResourceNameLocalizer returns a function resolving resource ids of a
// campaign to names in the display language. It is backed by the bulk options
// fetch, not by per-resource fetches. Ids unknown to the campaign, including
// those of other campaigns, resolve to "".
func (s *Store[R, L, F]) ResourceNameLocalizer(ctx context.Context, campaignID string) func(id string) string {
	lang := s.ensureOptions(ctx, campaignID)
	return func(id string) string {
		if !contains(s.optionLists.Get(campaignID, nil), id) {
			return ""
		}
		o, ok := s.options.Lookup(id)
		if !ok {
			return ""
		}
		return o.Name.In(lang)
	}
}

// ResourceOptions returns the pick-list options of a campaign, labelled in the
// display language.
func (s *Store[R, L, F]) ResourceOptions(ctx context.Context, campaignID string) []resource.LocalizedOption {
	lang := s.ensureOptions(ctx, campaignID)
	ids := s.optionLists.Get(campaignID, nil)
	out := make([]resource.LocalizedOption, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.options.Lookup(id); ok {
			out = append(out, o.Localize(lang))
		}
	}
	return out
}

func (s *Store[R, L, F]) ensureOptions(ctx context.Context, campaignID string) string {
	lang := s.lang()
	_ = s.cfg.Query.Ensure(ctx, s.optionsKey(campaignID, lang), func(ctx context.Context) error {
		return s.fetchOptions(ctx, campaignID, lang)
	})
	return lang
}

// |||||| DERIVED VIEWS ||||||

// refilter recomputes the filtered list of a campaign. Listeners are only
// notified when the list changes. The name filter is read under the list's
// lock, so the last refilter to run always sees the latest filter.
func (s *Store[R, L, F]) refilter(campaignID string) {
	s.filtered.Apply(campaignID, func(prev []string, ok bool) ([]string, bool) {
		needle := s.Filters(s.bg).NameFilter()
		ids := s.ids.Get(campaignID, nil)
		next := make([]string, 0, len(ids))
		for _, id := range ids {
			if needle == "" {
				next = append(next, id)
				continue
			}
			if r, ok := s.resources.Lookup(id); ok && r.Value.Meta().Name.Matches(needle) {
				next = append(next, id)
			}
		}
		return next, !ok || !equal(prev, next)
	})
}

func (s *Store[R, L, F]) track(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaignID]; !ok {
		s.campaigns[campaignID] = &campaign{}
	}
}

func (s *Store[R, L, F]) tracked(campaignID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.campaigns[campaignID]
	return ok
}

type closer interface {
	OnClose(d observe.Disposer)
}

// activate marks a campaign's list as watched until w is closed.
func (s *Store[R, L, F]) activate(w closer, campaignID string) {
	s.track(campaignID)
	s.mu.Lock()
	s.campaigns[campaignID].active++
	s.mu.Unlock()
	w.OnClose(func() {
		s.mu.Lock()
		s.campaigns[campaignID].active--
		s.mu.Unlock()
	})
}

// watch marks a resource as watched until w is closed.
func (s *Store[R, L, F]) watch(w closer, id string) {
	s.mu.Lock()
	s.watched[id]++
	s.mu.Unlock()
	w.OnClose(func() {
		s.mu.Lock()
		s.watched[id]--
		if s.watched[id] <= 0 {
			delete(s.watched, id)
		}
		s.mu.Unlock()
	})
}

// |||||| BACKGROUND REFRESH ||||||

func (s *Store[R, L, F]) onFiltersChanged() {
	s.mu.Lock()
	campaigns := make([]string, 0, len(s.campaigns))
	for c := range s.campaigns {
		campaigns = append(campaigns, c)
	}
	s.mu.Unlock()
	for _, c := range campaigns {
		s.refilter(c)
	}
	s.refreshActive()
}

// refreshActive refetches the lists of every watched campaign. Lists whose
// query key did not change are still fresh and are not refetched.
func (s *Store[R, L, F]) refreshActive() {
	s.mu.Lock()
	var campaigns []string
	for c, st := range s.campaigns {
		if st.active > 0 {
			campaigns = append(campaigns, c)
		}
	}
	s.mu.Unlock()
	for _, c := range campaigns {
		c := c
		s.background(s.bg, func(ctx context.Context) { s.ResourceIDs(ctx, c) })
	}
}

func (s *Store[R, L, F]) onInvalidate(key query.Key) {
	if len(key) < 2 {
		return
	}
	s.mu.Lock()
	var refresh func(ctx context.Context)
	switch key[0] {
	case s.cfg.Plural:
		if c, ok := s.campaigns[key[1]]; ok && c.active > 0 {
			refresh = func(ctx context.Context) { s.ResourceIDs(ctx, key[1]) }
		}
	case string(s.cfg.Kind):
		if s.watched[key[1]] > 0 {
			refresh = func(ctx context.Context) { s.Resource(ctx, key[1]) }
		}
	}
	s.mu.Unlock()
	if refresh != nil {
		s.background(s.bg, refresh)
	}
}

func clone(ids []string) []string {
	if ids == nil {
		return nil
	}
	return append([]string(nil), ids...)
}

func contains(ids []string, id string) bool {
	for _, e := range ids {
		if e == id {
			return true
		}
	}
	return false
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
