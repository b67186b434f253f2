package catalog

import (
	"context"

	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
)

// Row is one resource of a list, rendered for display.
type Row struct {
	ID       string
	Name     string
	Summary  string
	Selected bool
}

// Kind is the kind-independent face of a store, used where the concrete
// resource type does not matter.
type Kind interface {
	Kind() resource.Kind
	Plural() string
	TranslationNames() []string
	// Rows renders the filtered resources of a campaign in the display
	// language.
	Rows(ctx context.Context, campaignID string) []Row
	NameFilter(ctx context.Context) string
	SetNameFilter(ctx context.Context, name string) error
	ResetFilters(ctx context.Context) error
	SelectResource(id string)
	DeselectResource(id string)
	SelectAllResources(campaignID string)
	DeselectAllResources(campaignID string)
	SelectedFilteredResourceIDs(campaignID string) []string
	ResourceOptions(ctx context.Context, campaignID string) []resource.LocalizedOption
	DeleteResources(ctx context.Context, ids []string) error
	// Prefetch loads the list and options of a campaign.
	Prefetch(ctx context.Context, campaignID string) error
	Close() error
}

// entry adapts a typed store to Kind.
type entry[R store.Entity, L any, F store.Filter] struct {
	*store.Store[R, L, F]
	withName func(F, string) F
	row      func(L) Row
}

var _ Kind = entry[resource.Resource, resource.Resource, resource.Filters]{}

func (e entry[R, L, F]) Rows(ctx context.Context, campaignID string) []Row {
	ids := e.FilteredResourceIDs(ctx, campaignID)
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		l, ok := e.LocalizedResource(ctx, id)
		if !ok {
			continue
		}
		r := e.row(l)
		r.Selected = e.ResourceSelection(id)
		rows = append(rows, r)
	}
	return rows
}

func (e entry[R, L, F]) NameFilter(ctx context.Context) string {
	return e.Filters(ctx).NameFilter()
}

func (e entry[R, L, F]) SetNameFilter(ctx context.Context, name string) error {
	_, err := e.UpdateFilters(ctx, func(f F) F { return e.withName(f, name) })
	return err
}

func (e entry[R, L, F]) Prefetch(ctx context.Context, campaignID string) error {
	e.ResourceIDs(ctx, campaignID)
	e.ResourceOptions(ctx, campaignID)
	return ctx.Err()
}
