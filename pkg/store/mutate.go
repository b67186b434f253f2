package store

import (
	"context"

	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"go.uber.org/zap"
)

// Mutations wait for the backend to acknowledge before touching any cache. A
// failed mutation leaves every cache untouched and returns the backend's
// message as an *rpc.Error.

// CreateResource creates a resource in a campaign. fields are the kind
// attributes and translation the localized fields in lang. On success every id
// list and option list of the kind is invalidated.
func (s *Store[R, L, F]) CreateResource(
	ctx context.Context,
	campaignID string,
	lang string,
	fields resource.Fields,
	translation resource.Fields,
) error {
	op := s.cfg.Ops.Create
	if err := s.cfg.Service.Call(ctx, op, rpc.CreateParams{
		CampaignID:  campaignID,
		Lang:        lang,
		Resource:    orEmpty(fields),
		Translation: orEmpty(translation),
	}, nil); err != nil {
		return s.mutationFailed(op, err)
	}
	s.cfg.Query.Invalidate(query.K(s.cfg.Plural))
	s.cfg.Query.Invalidate(query.K(optionsRoot))
	return nil
}

// UpdateResource applies a partial update to a resource. On success the
// resource's own query and every option list are invalidated.
func (s *Store[R, L, F]) UpdateResource(
	ctx context.Context,
	id string,
	lang string,
	fields resource.Fields,
	translation resource.Fields,
) error {
	op := s.cfg.Ops.Update
	if err := s.cfg.Service.Call(ctx, op, rpc.UpdateParams{
		ID:          id,
		Lang:        lang,
		Resource:    orEmpty(fields),
		Translation: orEmpty(translation),
	}, nil); err != nil {
		return s.mutationFailed(op, err)
	}
	s.cfg.Query.Invalidate(s.resourceKey(id))
	s.cfg.Query.Invalidate(query.K(optionsRoot))
	return nil
}

// DeleteResources deletes a batch of resources. The batch succeeds or fails as
// a whole. On success each id's query is invalidated, its selection cleared,
// and it is evicted from every cache and id list.
func (s *Store[R, L, F]) DeleteResources(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	op := s.cfg.Ops.Delete
	if err := s.cfg.Service.Call(ctx, op, rpc.DeleteParams{IDs: ids}, nil); err != nil {
		return s.mutationFailed(op, err)
	}
	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
		s.cfg.Query.Invalidate(s.resourceKey(id))
		s.selection.Clear(id)
		s.resources.Clear(id)
		s.options.Clear(id)
		s.mu.Lock()
		delete(s.memo, id)
		s.mu.Unlock()
	}
	prune(s.ids.Keys(), s.ids.Apply, deleted)
	prune(s.optionLists.Keys(), s.optionLists.Apply, deleted)
	return nil
}

type applyFunc = func(key string, fn func(prev []string, ok bool) ([]string, bool)) ([]string, bool)

// prune removes deleted ids from every list, writing only the lists that held
// one of them.
func prune(keys []string, apply applyFunc, deleted map[string]bool) {
	for _, k := range keys {
		apply(k, func(prev []string, ok bool) ([]string, bool) {
			next := make([]string, 0, len(prev))
			for _, id := range prev {
				if !deleted[id] {
					next = append(next, id)
				}
			}
			return next, ok && len(next) != len(prev)
		})
	}
}

func (s *Store[R, L, F]) mutationFailed(op string, err error) error {
	s.logger.Warn("mutation failed", zap.String("op", op), zap.Error(err))
	return rpc.AsError(op, err)
}

func orEmpty(f resource.Fields) resource.Fields {
	if f == nil {
		return resource.Fields{}
	}
	return f
}
