// Package pref persists user preferences. Preferences are the display
// language source of every store: *Store implements i18n.Locale.
package pref

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/kv"
	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"go.uber.org/zap"
)

type Preferences struct {
	Lang string `json:"lang"`
	// Pages shows sourcebook page references next to names.
	Pages bool `json:"pages"`
}

var Schema = schema.New("preferences", map[string]schema.Field{
	"lang":  {Type: schema.String, Required: true, Enum: i18n.Codes()},
	"pages": {Type: schema.Bool},
})

func Default() Preferences { return Preferences{Lang: i18n.Default} }

type Config struct {
	Engine kv.Engine
	// Profile namespaces the preferences of one user.
	Profile string
	Logger  *zap.Logger
}

// Store holds the preferences of one profile.
type Store struct {
	profile string
	kv      *kv.Store[Preferences]
	logger  *zap.Logger
}

var _ i18n.Locale = (*Store)(nil)

func Open(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	s, err := kv.Open(kv.Config[Preferences]{
		Engine:  cfg.Engine,
		Prefix:  "prefs/",
		Schema:  Schema,
		Default: Default(),
		Logger:  cfg.Logger.Named("pref"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[pref] - failed to open")
	}
	return &Store{profile: cfg.Profile, kv: s, logger: cfg.Logger.Named("pref")}, nil
}

func (s *Store) Get(ctx context.Context) Preferences { return s.kv.Get(ctx, s.profile) }

// Lang returns the display language.
func (s *Store) Lang() string { return s.Get(context.Background()).Lang }

// SetLang validates code and makes its closest supported language the display
// language.
func (s *Store) SetLang(ctx context.Context, code string) error {
	lang, err := i18n.ParseLang(code)
	if err != nil {
		return err
	}
	_, err = s.kv.Update(ctx, s.profile, func(p Preferences) Preferences {
		p.Lang = lang
		return p
	})
	return err
}

func (s *Store) SetPages(ctx context.Context, pages bool) error {
	_, err := s.kv.Update(ctx, s.profile, func(p Preferences) Preferences {
		p.Pages = pages
		return p
	})
	return err
}

// Reset restores the default preferences.
func (s *Store) Reset(ctx context.Context) error { return s.kv.Reset(ctx, s.profile) }

func (s *Store) Watch(ctx context.Context, fn func(Preferences)) *cache.Watch[Preferences] {
	return s.kv.Watch(ctx, s.profile, fn)
}

// OnChange calls fn whenever the display language changes. Writes that leave
// the language as it was are not reported.
func (s *Store) OnChange(fn func(lang string)) observe.Disposer {
	var mu sync.Mutex
	last := s.Lang()
	w := s.kv.Watch(context.Background(), s.profile, func(p Preferences) {
		mu.Lock()
		changed := p.Lang != last
		last = p.Lang
		mu.Unlock()
		if changed {
			s.logger.Debug("display language changed", zap.String("lang", p.Lang))
			fn(p.Lang)
		}
	})
	return w.Close
}
