package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"go.uber.org/zap"
)

// |||||| QUERY KEYS ||||||

const optionsRoot = "resource_options"

func (s *Store[R, L, F]) listKey(campaignID, lang string, f F) query.Key {
	server, err := json.Marshal(f.ServerFilters())
	if err != nil {
		s.logger.DPanic("server filters are not encodable", zap.Error(err))
	}
	order := f.Ordering()
	return query.K(s.cfg.Plural, campaignID, lang, string(server), order.By, string(order.Dir))
}

func (s *Store[R, L, F]) resourceKey(id string) query.Key {
	return query.K(string(s.cfg.Kind), id)
}

func (s *Store[R, L, F]) optionsKey(campaignID, lang string) query.Key {
	kinds := make([]string, len(s.cfg.OptionKinds))
	for i, k := range s.cfg.OptionKinds {
		kinds[i] = string(k)
	}
	return query.K(optionsRoot, campaignID, strings.Join(kinds, ","), lang)
}

// |||||| REMOTE READS ||||||

// fetchResources loads the resources of a campaign matching the server part of
// f. On failure the campaign's list is emptied: a failed fetch renders like an
// empty one.
func (s *Store[R, L, F]) fetchResources(ctx context.Context, campaignID, lang string, f F) error {
	order := f.Ordering()
	var raw json.RawMessage
	err := s.cfg.Service.Call(ctx, s.cfg.Ops.FetchMany, rpc.FetchManyParams{
		CampaignID: campaignID,
		Langs:      []string{lang},
		Filters:    f.ServerFilters(),
		OrderBy:    order.By,
		OrderDir:   order.Dir,
	}, &raw)
	var rs []R
	if err == nil {
		rs, err = schema.ParseSlice[R](s.cfg.Schema, raw)
	}
	if err != nil {
		s.logger.Warn("failed to fetch resources",
			zap.String("campaign", campaignID),
			zap.Error(err),
		)
		s.ids.Set(campaignID, []string{})
		return err
	}
	ids := make([]string, len(rs))
	for i, r := range rs {
		s.merge(r)
		ids[i] = r.Meta().ID
	}
	s.ids.Set(campaignID, ids)
	return nil
}

// fetchResource loads a single resource. On failure the cache is left as is.
func (s *Store[R, L, F]) fetchResource(ctx context.Context, id string) error {
	var raw json.RawMessage
	err := s.cfg.Service.Call(ctx, s.cfg.Ops.Fetch, rpc.FetchParams{ID: id}, &raw)
	var r R
	if err == nil {
		r, err = schema.Parse[R](s.cfg.Schema, raw)
	}
	if err != nil {
		s.logger.Warn("failed to fetch resource", zap.String("id", id), zap.Error(err))
		return err
	}
	s.merge(r)
	return nil
}

// fetchOptions loads the name-only options of a campaign.
func (s *Store[R, L, F]) fetchOptions(ctx context.Context, campaignID, lang string) error {
	var raw json.RawMessage
	err := s.cfg.Service.Call(ctx, s.cfg.Ops.FetchOptions, rpc.FetchOptionsParams{
		CampaignID: campaignID,
		Kinds:      s.cfg.OptionKinds,
		Langs:      []string{lang},
	}, &raw)
	var opts []resource.Option
	if err == nil {
		opts, err = schema.ParseSlice[resource.Option](resource.OptionSchema, raw)
	}
	if err != nil {
		s.logger.Warn("failed to fetch resource options",
			zap.String("campaign", campaignID),
			zap.Error(err),
		)
		return err
	}
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
		s.options.Upsert(o.ID, func(prev resource.Option, ok bool) resource.Option {
			if ok {
				o.Name = prev.Name.Merge(o.Name)
			}
			o.Name = o.Name.OrEmpty()
			return o
		})
	}
	s.optionLists.Set(campaignID, ids)
	return nil
}

// merge writes a fetched resource into the cache, merging translations with
// the cached copy language by language.
func (s *Store[R, L, F]) merge(r R) {
	resource.FillText(&r, s.cfg.Translations)
	s.resources.Upsert(r.Meta().ID, func(prev revision[R], ok bool) revision[R] {
		v := r
		if ok {
			v = resource.Merge(prev.Value, r, s.cfg.Translations)
		}
		return revision[R]{Value: v, Rev: s.rev.Add(1)}
	})
}

func (s *Store[R, L, F]) lookup(id string) cache.Entry[R] {
	r, ok := s.resources.Lookup(id)
	return cache.Entry[R]{Value: r.Value, Present: ok}
}
