// Package store builds the client-side data layer of a resource kind: id lists
// per campaign, a merged per-resource cache, locally filtered views, selection
// state, and remote mutations that invalidate what they touch. Every concrete
// kind is an instantiation of Store.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/kv"
	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"go.uber.org/zap"
)

// Entity is a resource of some kind.
type Entity interface {
	Meta() resource.Resource
}

// Filter is the filter of some kind. The name filter is applied locally and
// never sent; server filters and ordering are sent with every list fetch.
type Filter interface {
	NameFilter() string
	ServerFilters() map[string]interface{}
	Ordering() resource.Order
}

// Deps are the collaborators shared by every store of an application.
type Deps struct {
	Service rpc.Service
	Query   *query.Client
	Locale  i18n.Locale
	// Engine persists filters across sessions.
	Engine kv.Engine
	Logger *zap.Logger
}

// Ops are the remote operation names of a kind.
type Ops struct {
	Fetch        string
	FetchMany    string
	Create       string
	Update       string
	FetchOptions string
	Delete       string
}

type Config[R Entity, L any, F Filter] struct {
	Deps
	Kind   resource.Kind
	Plural string
	// Schema validates every fetched resource.
	Schema *schema.Schema
	// Default is the blank resource new-resource forms start from.
	Default R
	// FilterSchema validates persisted filters. DefaultFilters must satisfy it.
	FilterSchema   *schema.Schema
	DefaultFilters F
	// Translations are merged language by language on every cache write.
	Translations []resource.TranslationField[R]
	// Localize projects a resource into a display language.
	Localize func(lang string, r R) L
	// OptionKinds are the kinds whose names the name localizer resolves.
	// Defaults to Kind.
	OptionKinds []resource.Kind
	// Ops defaults to the names derived from Kind and Plural.
	Ops Ops
}

func (c Config[R, L, F]) validate() error {
	switch {
	case c.Kind == "":
		return errors.New("[store] - kind is required")
	case c.Plural == "":
		return errors.New("[store] - plural is required")
	case c.Schema == nil:
		return errors.New("[store] - schema is required")
	case c.FilterSchema == nil:
		return errors.New("[store] - filter schema is required")
	case c.Localize == nil:
		return errors.New("[store] - localize is required")
	case c.Service == nil:
		return errors.New("[store] - service is required")
	case c.Query == nil:
		return errors.New("[store] - query client is required")
	case c.Locale == nil:
		return errors.New("[store] - locale is required")
	case c.Engine == nil:
		return errors.New("[store] - engine is required")
	}
	return nil
}

func (c *Config[R, L, F]) defaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if len(c.OptionKinds) == 0 {
		c.OptionKinds = []resource.Kind{c.Kind}
	}
	o := &c.Ops
	if o.Fetch == "" {
		o.Fetch = rpc.FetchOp(c.Kind)
	}
	if o.FetchMany == "" {
		o.FetchMany = rpc.FetchManyOp(c.Plural)
	}
	if o.Create == "" {
		o.Create = rpc.CreateOp(c.Kind)
	}
	if o.Update == "" {
		o.Update = rpc.UpdateOp(c.Kind)
	}
	if o.FetchOptions == "" {
		o.FetchOptions = rpc.FetchResourceOptions
	}
	if o.Delete == "" {
		o.Delete = rpc.DeleteResources
	}
}

// Store is the data layer of one kind. Build one per kind at startup and share
// it with every consumer.
type Store[R Entity, L any, F Filter] struct {
	cfg     Config[R, L, F]
	logger  *zap.Logger
	filters *kv.Store[F]

	ids         *cache.Memory[string, []string]
	filtered    *cache.Memory[string, []string]
	resources   *cache.Memory[string, revision[R]]
	options     *cache.Memory[string, resource.Option]
	optionLists *cache.Memory[string, []string]
	selection   *cache.Memory[string, bool]

	// rev orders cache writes, keying the localization memo.
	rev atomic.Uint64

	mu        sync.Mutex
	memo      map[string]memo[L]
	campaigns map[string]*campaign
	watched   map[string]int
	closed    bool
	disposers []observe.Disposer

	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type revision[R any] struct {
	Value R
	Rev   uint64
}

type memo[L any] struct {
	rev   uint64
	lang  string
	value L
}

// campaign tracks the derived views kept up to date for a campaign.
type campaign struct {
	// active counts open list watches. Active campaigns are refetched in the
	// background whenever their list query goes stale.
	active int
}

// New validates cfg and builds a Store. An error means the store was wired
// incorrectly.
func New[R Entity, L any, F Filter](cfg Config[R, L, F]) (*Store[R, L, F], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.defaults()
	logger := cfg.Logger.Named("store").With(zap.String("kind", string(cfg.Kind)))
	filters, err := kv.Open(kv.Config[F]{
		Engine:  cfg.Engine,
		Prefix:  "filters/",
		Schema:  cfg.FilterSchema,
		Default: cfg.DefaultFilters,
		Logger:  logger,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[store] - %s filters", cfg.Kind)
	}
	bg, cancel := context.WithCancel(context.Background())
	s := &Store[R, L, F]{
		cfg:         cfg,
		logger:      logger,
		filters:     filters,
		ids:         cache.New[string, []string](),
		filtered:    cache.New[string, []string](),
		resources:   cache.New[string, revision[R]](),
		options:     cache.New[string, resource.Option](),
		optionLists: cache.New[string, []string](),
		selection:   cache.New[string, bool](),
		memo:        make(map[string]memo[L]),
		campaigns:   make(map[string]*campaign),
		watched:     make(map[string]int),
		bg:          bg,
		cancel:      cancel,
	}
	s.listen()
	return s, nil
}

// listen wires the store to the changes it derives views from.
func (s *Store[R, L, F]) listen() {
	filterWatch := s.filters.Watch(s.bg, s.filterKey(), func(F) { s.onFiltersChanged() })
	s.disposers = append(s.disposers,
		filterWatch.Close,
		s.ids.SubscribeAny(func(campaignID string, _ cache.Entry[[]string]) {
			if s.tracked(campaignID) {
				s.refilter(campaignID)
			}
		}),
		s.resources.SubscribeAny(func(_ string, e cache.Entry[revision[R]]) {
			if !e.Present {
				return
			}
			if c := e.Value.Value.Meta().CampaignID; s.tracked(c) {
				s.refilter(c)
			}
		}),
		s.cfg.Locale.OnChange(func(string) { s.refreshActive() }),
		s.cfg.Query.OnInvalidate(s.onInvalidate),
	)
}

// Kind returns the kind the store serves.
func (s *Store[R, L, F]) Kind() resource.Kind { return s.cfg.Kind }

func (s *Store[R, L, F]) Plural() string { return s.cfg.Plural }

// TranslationNames lists the localized fields of the kind.
func (s *Store[R, L, F]) TranslationNames() []string {
	names := make([]string, len(s.cfg.Translations))
	for i, f := range s.cfg.Translations {
		names[i] = f.Name
	}
	return names
}

// DefaultResource returns the blank resource of the kind.
func (s *Store[R, L, F]) DefaultResource() R { return s.cfg.Default }

// Close detaches the store from its collaborators and waits for background
// refreshes to finish.
func (s *Store[R, L, F]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()
	for _, d := range disposers {
		d()
	}
	s.cancel()
	s.wg.Wait()
	return nil
}

// background runs fn on its own goroutine. fn sees the values of ctx but is
// cancelled only when the store closes.
func (s *Store[R, L, F]) background(ctx context.Context, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(s.bg, cancel)
		defer stop()
		fn(ctx)
	}()
}

func (s *Store[R, L, F]) lang() string { return s.cfg.Locale.Lang() }
