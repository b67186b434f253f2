package store_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/kv"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc/memory"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"github.com/zuccha/dnd-portal-sub002/pkg/storage"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type item struct {
	resource.Resource
	Type  string    `json:"type"`
	Cost  float64   `json:"cost"`
	Notes i18n.Text `json:"notes"`
}

type localizedItem struct {
	ID    string
	Name  string
	Notes string
}

type itemFilters struct {
	resource.Filters
	Types resource.Set `json:"types,omitempty"`
}

func (f itemFilters) ServerFilters() map[string]interface{} {
	return resource.ServerFilterSet{}.Set("type", f.Types)
}

var (
	itemSchema = resource.Schema.Extend("item", map[string]schema.Field{
		"type":  {Type: schema.String, Required: true, Enum: []string{"simple", "martial"}},
		"cost":  {Type: schema.Number},
		"notes": {Type: schema.Text},
	})
	itemFiltersSchema = resource.FiltersSchema.Extend("item_filters", map[string]schema.Field{
		"types": {Type: schema.Set, Enum: []string{"simple", "martial"}},
	})
	defaultFilters = itemFilters{Filters: resource.Filters{OrderBy: "name", OrderDir: resource.Asc}}
)

func newItem(id, campaign string, name i18n.Text, typ string) item {
	return item{
		Resource: resource.Resource{
			ID:         id,
			Kind:       "item",
			CampaignID: campaign,
			Visibility: resource.Public,
			Name:       name,
		},
		Type:  typ,
		Notes: i18n.Text{"en": "notes of " + name.In("en")},
	}
}

type itemStore = store.Store[item, localizedItem, itemFilters]

type harness struct {
	backend   *memory.Backend
	locale    *i18n.StaticLocale
	query     *query.Client
	engine    kv.Engine
	storage   storage.Storage
	localized atomic.Int32
}

func newHarness() *harness {
	st, err := storage.Open(storage.Config{MemBacked: true})
	Expect(err).ToNot(HaveOccurred())
	return &harness{
		backend: memory.New(memory.Config{
			Kinds: []memory.Kind{{
				Kind:         "item",
				Plural:       "items",
				Translations: []string{"name", "notes", "page"},
			}},
			Campaigns: map[string]string{"c1": "Lost Mine"},
		}),
		locale:  i18n.NewStaticLocale("en"),
		query:   query.NewClient(query.Config{}),
		engine:  kv.PebbleEngine{DB: st.KV},
		storage: st,
	}
}

func (h *harness) open() *itemStore {
	s, err := store.New(store.Config[item, localizedItem, itemFilters]{
		Deps: store.Deps{
			Service: rpc.Local(h.backend),
			Query:   h.query,
			Locale:  h.locale,
			Engine:  h.engine,
		},
		Kind:           "item",
		Plural:         "items",
		Schema:         itemSchema,
		FilterSchema:   itemFiltersSchema,
		DefaultFilters: defaultFilters,
		Translations: []resource.TranslationField[item]{
			resource.TextField("name", func(r *item) *i18n.Text { return &r.Name }),
			resource.TextField("notes", func(r *item) *i18n.Text { return &r.Notes }),
			resource.NumberField("page", func(r *item) *i18n.Number { return &r.Page }),
		},
		Localize: func(lang string, r item) localizedItem {
			h.localized.Add(1)
			return localizedItem{ID: r.ID, Name: r.Name.In(lang), Notes: r.Notes.In(lang)}
		},
	})
	Expect(err).ToNot(HaveOccurred())
	return s
}

var _ = Describe("Store", func() {
	var (
		ctx = context.Background()
		h   *harness
		s   *itemStore
	)
	setName := func(name string) {
		_, err := s.UpdateFilters(ctx, func(f itemFilters) itemFilters {
			f.Name = name
			return f
		})
		Expect(err).ToNot(HaveOccurred())
	}
	BeforeEach(func() {
		h = newHarness()
		Expect(h.backend.Seed(
			newItem("w1", "c1", i18n.Text{"en": "Dagger", "it": "Pugnale"}, "simple"),
			newItem("w2", "c1", i18n.Text{"en": "Longsword", "it": "Spada lunga"}, "martial"),
			newItem("w9", "c2", i18n.Text{"en": "Club"}, "simple"),
		)).To(Succeed())
		s = h.open()
	})
	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
		Expect(h.storage.Close()).To(Succeed())
	})

	Describe("New", func() {
		It("Should reject an incomplete configuration", func() {
			_, err := store.New(store.Config[item, localizedItem, itemFilters]{Kind: "item"})
			Expect(err).To(MatchError("[store] - plural is required"))
		})
		It("Should reject a default filter that does not satisfy the filter schema", func() {
			_, err := store.New(store.Config[item, localizedItem, itemFilters]{
				Deps: store.Deps{
					Service: rpc.Local(h.backend),
					Query:   h.query,
					Locale:  h.locale,
					Engine:  h.engine,
				},
				Kind:           "item",
				Plural:         "items",
				Schema:         itemSchema,
				FilterSchema:   itemFiltersSchema,
				DefaultFilters: itemFilters{},
				Localize:       func(string, item) localizedItem { return localizedItem{} },
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ResourceIDs", func() {
		It("Should fetch the campaign's resources in the requested order", func() {
			Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
			Expect(s.ResourceIDs(ctx, "c2")).To(Equal([]string{"w9"}))
		})
		It("Should not refetch a fresh list", func() {
			s.ResourceIDs(ctx, "c1")
			s.ResourceIDs(ctx, "c1")
			Expect(h.backend.Calls("fetch_items")).To(Equal(1))
		})
		It("Should render a failed fetch as an empty list and retry on the next read", func() {
			h.backend.FailNext("fetch_items", "offline")
			Expect(s.ResourceIDs(ctx, "c1")).To(BeEmpty())
			Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
		})
		It("Should refetch when the server filters change", func() {
			s.ResourceIDs(ctx, "c1")
			Expect(s.SetFilters(ctx, itemFilters{
				Filters: defaultFilters.Filters,
				Types:   resource.Set{"martial": true},
			})).To(Succeed())
			Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"w2"}))
			Expect(h.backend.Calls("fetch_items")).To(Equal(2))
		})
		It("Should not refetch when only the name filter changes", func() {
			s.ResourceIDs(ctx, "c1")
			setName("dag")
			s.ResourceIDs(ctx, "c1")
			Expect(h.backend.Calls("fetch_items")).To(Equal(1))
		})
		It("Should refetch when the display language changes", func() {
			s.ResourceIDs(ctx, "c1")
			h.locale.Set("it")
			s.ResourceIDs(ctx, "c1")
			Expect(h.backend.Calls("fetch_items")).To(Equal(2))
		})
	})

	Describe("merge", func() {
		It("Should keep cached translations that a scoped fetch lacks", func() {
			h.locale.Set("it")
			s.ResourceIDs(ctx, "c1")
			cheaper := newItem("w1", "c1", i18n.Text{"en": "Dirk", "it": "Pugnale"}, "martial")
			cheaper.Cost = 1
			Expect(h.backend.Seed(cheaper)).To(Succeed())
			h.locale.Set("en")
			s.ResourceIDs(ctx, "c1")

			h.backend.FailNext("fetch_item", "offline")
			r, ok := s.Resource(ctx, "w1")
			Expect(ok).To(BeTrue())
			Expect(r.Name).To(Equal(i18n.Text{"en": "Dirk", "it": "Pugnale"}))
			Expect(r.Type).To(Equal("martial"))
			Expect(r.Cost).To(Equal(1.0))
		})
	})

	Describe("Resource", func() {
		It("Should fetch every language of a single resource", func() {
			r, ok := s.Resource(ctx, "w2")
			Expect(ok).To(BeTrue())
			Expect(r.Name.Langs()).To(ConsistOf("en", "it"))
			Expect(r.CampaignID).To(Equal("c1"))
		})
		It("Should report a resource that was never fetched successfully", func() {
			_, ok := s.Resource(ctx, "nope")
			Expect(ok).To(BeFalse())
		})
		It("Should share a single remote call between concurrent readers", func() {
			release := h.backend.Hold()
			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, ok := s.Resource(ctx, "w1")
					Expect(ok).To(BeTrue())
				}()
			}
			Eventually(func() int { return h.backend.Calls("fetch_item") }).Should(Equal(1))
			release()
			wg.Wait()
			Expect(h.backend.Calls("fetch_item")).To(Equal(1))
		})
	})

	Describe("LocalizedResource", func() {
		It("Should project the resource into the display language", func() {
			l, ok := s.LocalizedResource(ctx, "w1")
			Expect(ok).To(BeTrue())
			Expect(l).To(Equal(localizedItem{ID: "w1", Name: "Dagger", Notes: "notes of Dagger"}))
			h.locale.Set("it")
			l, _ = s.LocalizedResource(ctx, "w1")
			Expect(l.Name).To(Equal("Pugnale"))
			Expect(l.Notes).To(Equal("notes of Dagger"))
		})
		It("Should memoize the projection until the resource changes", func() {
			s.LocalizedResource(ctx, "w1")
			s.LocalizedResource(ctx, "w1")
			Expect(h.localized.Load()).To(Equal(int32(1)))
			Expect(s.UpdateResource(ctx, "w1", "en", nil, resource.Fields{"name": "Knife"})).To(Succeed())
			l, _ := s.LocalizedResource(ctx, "w1")
			Expect(l.Name).To(Equal("Knife"))
			Expect(h.localized.Load()).To(Equal(int32(2)))
		})
	})

	Describe("FilteredResourceIDs", func() {
		It("Should match names ignoring case and diacritics", func() {
			Expect(h.backend.Seed(newItem("w3", "c1", i18n.Text{"en": "Épée"}, "martial"))).To(Succeed())
			setName("epee")
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w3"}))
			setName("ÉPÉE")
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w3"}))
		})
		It("Should match names in any cached language", func() {
			s.Resource(ctx, "w2")
			setName("spada")
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w2"}))
		})
		It("Should return every id for an empty needle", func() {
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
		})
	})

	Describe("Filters", func() {
		It("Should return the default until set", func() {
			Expect(s.Filters(ctx)).To(Equal(defaultFilters))
		})
		It("Should persist filters across stores", func() {
			f := itemFilters{
				Filters: resource.Filters{Name: "sword", OrderBy: "cost", OrderDir: resource.Desc},
				Types:   resource.Set{"simple": false},
			}
			Expect(s.SetFilters(ctx, f)).To(Succeed())
			Expect(s.Filters(ctx)).To(Equal(f))
			other := h.open()
			defer other.Close()
			Expect(other.Filters(ctx)).To(Equal(f))
		})
		It("Should fall back to the default for invalid persisted filters", func() {
			Expect(h.engine.Set(ctx, "filters/item", []byte(`{"order_by": "name", "order_dir": "up"}`))).To(Succeed())
			other := h.open()
			defer other.Close()
			Expect(other.Filters(ctx)).To(Equal(defaultFilters))
		})
		It("Should restore the default on reset", func() {
			setName("dag")
			Expect(s.ResetFilters(ctx)).To(Succeed())
			Expect(s.Filters(ctx)).To(Equal(defaultFilters))
		})
		It("Should notify filter watchers", func() {
			var seen []string
			w := s.WatchFilters(ctx, func(f itemFilters) { seen = append(seen, f.Name) })
			defer w.Close()
			setName("a")
			setName("b")
			Expect(seen).To(Equal([]string{"a", "b"}))
		})
	})

	Describe("selection", func() {
		It("Should scope bulk selection to the filtered list", func() {
			s.ResourceIDs(ctx, "c1")
			setName("dagger")
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w1"}))

			s.SelectAllResources("c1")
			Expect(s.ResourceSelection("w1")).To(BeTrue())
			Expect(s.ResourceSelection("w2")).To(BeFalse())

			setName("")
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
			Expect(s.ResourceSelection("w1")).To(BeTrue())
			Expect(s.ResourceSelection("w2")).To(BeFalse())
			Expect(s.SelectedFilteredResourceIDs("c1")).To(Equal([]string{"w1"}))
		})
		It("Should only return selected resources that pass the filter", func() {
			s.ResourceIDs(ctx, "c1")
			s.SelectResource("w1")
			s.SelectResource("w2")
			setName("long")
			rs := s.SelectedResources("c1")
			Expect(rs).To(HaveLen(1))
			Expect(rs[0].ID).To(Equal("w2"))
		})
		It("Should leave hidden rows alone when deselecting all", func() {
			s.ResourceIDs(ctx, "c1")
			s.SelectResource("w1")
			s.SelectResource("w2")
			setName("long")
			s.DeselectAllResources("c1")
			Expect(s.ResourceSelection("w1")).To(BeTrue())
			Expect(s.ResourceSelection("w2")).To(BeFalse())
		})
		It("Should toggle and notify watchers", func() {
			var seen []bool
			w := s.WatchResourceSelection("w1", func(v bool) { seen = append(seen, v) })
			defer w.Close()
			s.ToggleResourceSelection("w1")
			s.ToggleResourceSelection("w1")
			s.SelectResource("w1")
			s.DeselectResource("w1")
			Expect(seen).To(Equal([]bool{true, false, true, false}))
			Expect(w.Value()).To(BeFalse())
		})
	})

	Describe("ResourceNameLocalizer", func() {
		It("Should resolve names from the bulk options fetch", func() {
			name := s.ResourceNameLocalizer(ctx, "c1")
			Expect(name("w1")).To(Equal("Dagger"))
			Expect(name("w9")).To(BeEmpty())
			Expect(name("nope")).To(BeEmpty())
			Expect(h.backend.Calls("fetch_item")).To(BeZero())
			Expect(h.backend.Calls("fetch_resource_options")).To(Equal(1))
		})
		It("Should not resolve ids of other campaigns", func() {
			Expect(s.ResourceOptions(ctx, "c2")).To(HaveLen(1))
			Expect(s.ResourceNameLocalizer(ctx, "c1")("w9")).To(BeEmpty())
			Expect(s.ResourceNameLocalizer(ctx, "c2")("w9")).To(Equal("Club"))
		})
		It("Should label options in the display language", func() {
			h.locale.Set("it")
			opts := s.ResourceOptions(ctx, "c1")
			Expect(opts).To(HaveLen(2))
			Expect(opts[0].ID).To(Equal("w1"))
			Expect(opts[0].Label).To(Equal("Pugnale"))
			Expect(opts[1].Label).To(Equal("Spada lunga"))
		})
	})

	Describe("CreateResource", func() {
		It("Should create the resource and refetch the lists", func() {
			s.ResourceIDs(ctx, "c1")
			Expect(s.CreateResource(ctx, "c1", "en",
				resource.Fields{"type": "simple"},
				resource.Fields{"name": "Axe"},
			)).To(Succeed())
			ids := s.ResourceIDs(ctx, "c1")
			Expect(ids).To(HaveLen(3))
			Expect(h.backend.Calls("fetch_items")).To(Equal(2))
			r, ok := s.Resource(ctx, ids[0])
			Expect(ok).To(BeTrue())
			Expect(r.Name).To(Equal(i18n.Text{"en": "Axe"}))
			Expect(r.CampaignName).To(Equal("Lost Mine"))
			Expect(r.Visibility).To(Equal(resource.Private))
		})
		It("Should surface the backend message and leave the caches untouched", func() {
			s.ResourceIDs(ctx, "c1")
			err := s.CreateResource(ctx, "c1", "en", resource.Fields{"type": "simple"}, nil)
			Expect(err).To(MatchError("name is required"))
			var rerr *rpc.Error
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Op).To(Equal("create_item"))
			Expect(s.ResourceIDs(ctx, "c1")).To(HaveLen(2))
			Expect(h.backend.Calls("fetch_items")).To(Equal(1))
		})
	})

	Describe("UpdateResource", func() {
		It("Should merge the translation into the cached resource", func() {
			s.Resource(ctx, "w1")
			Expect(s.UpdateResource(ctx, "w1", "it", nil, resource.Fields{"name": "Stiletto"})).To(Succeed())
			r, _ := s.Resource(ctx, "w1")
			Expect(r.Name).To(Equal(i18n.Text{"en": "Dagger", "it": "Stiletto"}))
		})
		It("Should reject immutable fields", func() {
			err := s.UpdateResource(ctx, "w1", "en", resource.Fields{"campaign_id": "c2"}, nil)
			Expect(err).To(MatchError("field campaign_id cannot be set"))
		})
	})

	Describe("DeleteResources", func() {
		BeforeEach(func() {
			s.ResourceIDs(ctx, "c1")
			s.ResourceOptions(ctx, "c1")
			s.SelectResource("w1")
		})
		It("Should evict deleted resources from every view", func() {
			Expect(s.DeleteResources(ctx, []string{"w1"})).To(Succeed())
			Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"w2"}))
			Expect(s.FilteredResourceIDs(ctx, "c1")).To(Equal([]string{"w2"}))
			Expect(s.ResourceSelection("w1")).To(BeFalse())
			Expect(s.ResourceNameLocalizer(ctx, "c1")("w1")).To(BeEmpty())
			Expect(s.ResourceOptions(ctx, "c1")).To(HaveLen(1))
			_, ok := s.Resource(ctx, "w1")
			Expect(ok).To(BeFalse())
		})
		It("Should notify resource watchers of the eviction", func() {
			var evicted atomic.Bool
			w := s.WatchResource(ctx, "w1", func(e cache.Entry[item]) {
				if !e.Present {
					evicted.Store(true)
				}
			})
			defer w.Close()
			Eventually(func() bool { return w.Value().Present }).Should(BeTrue())
			Expect(s.DeleteResources(ctx, []string{"w1"})).To(Succeed())
			Expect(evicted.Load()).To(BeTrue())
			Expect(w.Value().Present).To(BeFalse())
		})
		It("Should evict every resource of a batch", func() {
			s.SelectAllResources("c1")
			Expect(s.DeleteResources(ctx, []string{"w1", "w2"})).To(Succeed())
			for _, id := range []string{"w1", "w2"} {
				_, ok := s.Resource(ctx, id)
				Expect(ok).To(BeFalse())
				Expect(s.ResourceSelection(id)).To(BeFalse())
			}
			Expect(s.ResourceIDs(ctx, "c1")).To(BeEmpty())
			Expect(s.SelectedFilteredResourceIDs("c1")).To(BeEmpty())
			Expect(h.backend.Calls("delete_resources")).To(Equal(1))
		})
		It("Should fail the whole batch when one id is missing", func() {
			err := s.DeleteResources(ctx, []string{"w1", "nope"})
			Expect(err).To(MatchError("resource nope not found"))
			Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
			Expect(s.ResourceSelection("w1")).To(BeTrue())
		})
		It("Should not call the backend for an empty batch", func() {
			Expect(s.DeleteResources(ctx, nil)).To(Succeed())
			Expect(h.backend.Calls("delete_resources")).To(BeZero())
		})
	})

	Describe("watches", func() {
		It("Should fetch in the background and refresh after invalidation", func() {
			w := s.WatchResourceIDs(ctx, "c1", nil)
			defer w.Close()
			Eventually(w.Value).Should(HaveLen(2))
			Expect(h.backend.Seed(newItem("w4", "c1", i18n.Text{"en": "Axe"}, "martial"))).To(Succeed())
			h.query.Invalidate(query.K("items"))
			Eventually(w.Value).Should(HaveLen(3))
		})
		It("Should refilter watched lists when the name filter changes", func() {
			var mu sync.Mutex
			var last []string
			w := s.WatchFilteredResourceIDs(ctx, "c1", func(ids []string) {
				mu.Lock()
				defer mu.Unlock()
				last = ids
			})
			defer w.Close()
			Eventually(w.Value).Should(Equal([]string{"w1", "w2"}))
			setName("sword")
			Expect(w.Value()).To(Equal([]string{"w2"}))
			mu.Lock()
			defer mu.Unlock()
			Expect(last).To(Equal([]string{"w2"}))
		})
		It("Should settle on the latest name filter under concurrent refreshes", func() {
			w := s.WatchFilteredResourceIDs(ctx, "c1", nil)
			defer w.Close()
			Eventually(w.Value).Should(HaveLen(2))
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 50; i++ {
					h.query.Invalidate(query.K("items"))
				}
			}()
			for _, name := range []string{"sword", "", "long", "dagger"} {
				setName(name)
			}
			wg.Wait()
			Eventually(w.Value).Should(Equal([]string{"w1"}))
			Consistently(w.Value).Should(Equal([]string{"w1"}))
		})
		It("Should re-project a watched resource when the language changes", func() {
			w := s.WatchLocalizedResource(ctx, "w1", nil)
			defer w.Close()
			Eventually(func() string { return w.Value().Value.Name }).Should(Equal("Dagger"))
			h.locale.Set("it")
			Expect(w.Value().Value.Name).To(Equal("Pugnale"))
		})
		It("Should stop refreshing closed watches", func() {
			w := s.WatchResourceIDs(ctx, "c1", nil)
			Eventually(w.Value).Should(HaveLen(2))
			w.Close()
			h.query.Invalidate(query.K("items"))
			Consistently(func() int { return h.backend.Calls("fetch_items") }).Should(Equal(1))
		})
	})
})
