// Package mock builds store dependencies backed by the in-memory backend and
// in-memory storage, for tests and the development server.
package mock

import (
	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/kv"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc/memory"
	"github.com/zuccha/dnd-portal-sub002/pkg/storage"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
	"go.uber.org/zap"
)

// Kind is implemented by every store.
type Kind interface {
	Kind() resource.Kind
	Plural() string
	TranslationNames() []string
}

// Builder hands out store.Deps that share one backend, query client, and
// locale. Each call to Deps opens its own storage.
type Builder struct {
	Backend *memory.Backend
	Locale  *i18n.StaticLocale
	Query   *query.Client
	Logger  *zap.Logger
	storage []storage.Storage
}

func NewBuilder(campaigns map[string]string) *Builder {
	return &Builder{
		Backend: memory.New(memory.Config{Campaigns: campaigns}),
		Locale:  i18n.NewStaticLocale(i18n.Default),
		Query:   query.NewClient(query.Config{}),
		Logger:  zap.NewNop(),
	}
}

func (b *Builder) Deps() (store.Deps, error) {
	st, err := storage.Open(storage.Config{MemBacked: true, Logger: b.Logger})
	if err != nil {
		return store.Deps{}, err
	}
	b.storage = append(b.storage, st)
	return store.Deps{
		Service: rpc.Local(b.Backend),
		Query:   b.Query,
		Locale:  b.Locale,
		Engine:  kv.PebbleEngine{DB: st.KV},
		Logger:  b.Logger,
	}, nil
}

// Register makes the backend serve the kind of s.
func (b *Builder) Register(s Kind) {
	b.Backend.Register(memory.Kind{
		Kind:         s.Kind(),
		Plural:       s.Plural(),
		Translations: s.TranslationNames(),
	})
}

func (b *Builder) Close() error {
	var err error
	for i := range b.storage {
		err = errors.CombineErrors(err, b.storage[i].Close())
	}
	b.storage = nil
	return err
}
