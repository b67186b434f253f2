package store

import "github.com/zuccha/dnd-portal-sub002/pkg/cache"

// Selection flags are kept per resource id. Bulk selection only ever touches
// the filtered list of a campaign, so rows hidden by the name filter are never
// selected or deselected by a bulk action.

func (s *Store[R, L, F]) SelectResource(id string) { s.selection.Set(id, true) }

func (s *Store[R, L, F]) DeselectResource(id string) { s.selection.Set(id, false) }

func (s *Store[R, L, F]) ToggleResourceSelection(id string) {
	s.selection.Update(id, false, func(selected bool) bool { return !selected })
}

// SelectAllResources selects every id in the current filtered list of a
// campaign.
func (s *Store[R, L, F]) SelectAllResources(campaignID string) {
	for _, id := range s.currentFiltered(campaignID) {
		s.selection.Set(id, true)
	}
}

// DeselectAllResources deselects every id in the current filtered list of a
// campaign.
func (s *Store[R, L, F]) DeselectAllResources(campaignID string) {
	for _, id := range s.currentFiltered(campaignID) {
		s.selection.Set(id, false)
	}
}

// SelectedResources returns the cached resources of a campaign that are both
// selected and in the filtered list, in list order.
func (s *Store[R, L, F]) SelectedResources(campaignID string) []R {
	var out []R
	for _, id := range s.SelectedFilteredResourceIDs(campaignID) {
		if e := s.lookup(id); e.Present {
			out = append(out, e.Value)
		}
	}
	return out
}

// SelectedFilteredResourceIDs returns the selected ids of the filtered list of
// a campaign, in list order.
func (s *Store[R, L, F]) SelectedFilteredResourceIDs(campaignID string) []string {
	var out []string
	for _, id := range s.currentFiltered(campaignID) {
		if s.selection.Get(id, false) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store[R, L, F]) ResourceSelection(id string) bool { return s.selection.Get(id, false) }

func (s *Store[R, L, F]) WatchResourceSelection(id string, fn func(bool)) *cache.Watch[bool] {
	return s.selection.Watch(id, false, fn)
}

// currentFiltered returns the filtered list of a campaign as of now, without
// fetching.
func (s *Store[R, L, F]) currentFiltered(campaignID string) []string {
	s.track(campaignID)
	s.refilter(campaignID)
	return s.filtered.Get(campaignID, nil)
}
