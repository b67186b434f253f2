// Package catalog opens one store per resource kind on shared dependencies,
// so invalidations, in-flight reads, and the display language are common to
// every kind.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/armor"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/spell"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
	"github.com/zuccha/dnd-portal-sub002/pkg/weapon"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownKind is returned by Catalog.Kind for a name no store serves.
var ErrUnknownKind = errors.New("[catalog] - unknown kind")

// Descriptor names a kind and the fields a backend stores per language.
type Descriptor struct {
	Kind         resource.Kind
	Plural       string
	Translations []string
}

// Descriptors declares every kind the catalog serves, for backends that host
// them.
var Descriptors = []Descriptor{
	{Kind: weapon.Kind, Plural: weapon.Plural, Translations: []string{"name", "page", "notes"}},
	{Kind: armor.Kind, Plural: armor.Plural, Translations: []string{"name", "page", "notes"}},
	{
		Kind:         spell.Kind,
		Plural:       spell.Plural,
		Translations: []string{"name", "page", "description", "materials", "upgrade"},
	},
}

type Config struct {
	store.Deps
	// Translator renders UI strings. Defaults to Strings.
	Translator i18n.Translator
	// Concurrency bounds the stores Prefetch loads at once.
	Concurrency int
}

type Catalog struct {
	Weapons *weapon.Store
	Armors  *armor.Store
	Spells  *spell.Store

	cfg   Config
	kinds []Kind
}

// Open opens every store. Stores opened before a failure are closed again.
func Open(cfg Config) (c *Catalog, err error) {
	if cfg.Translator == nil {
		cfg.Translator = Strings
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	c = &Catalog{cfg: cfg}
	defer func() {
		if err != nil {
			err = errors.CombineErrors(err, c.Close())
			c = nil
		}
	}()

	if c.Weapons, err = weapon.New(cfg.Deps, cfg.Translator); err != nil {
		return c, err
	}
	c.kinds = append(c.kinds, entry[weapon.Weapon, weapon.Localized, weapon.Filters]{
		Store: c.Weapons,
		withName: func(f weapon.Filters, name string) weapon.Filters {
			f.Name = name
			return f
		},
		row: func(l weapon.Localized) Row {
			return Row{ID: l.ID, Name: l.Name, Summary: join(l.Type, l.Damage, l.Properties, l.Cost)}
		},
	})

	if c.Armors, err = armor.New(cfg.Deps, cfg.Translator); err != nil {
		return c, err
	}
	c.kinds = append(c.kinds, entry[armor.Armor, armor.Localized, armor.Filters]{
		Store: c.Armors,
		withName: func(f armor.Filters, name string) armor.Filters {
			f.Name = name
			return f
		},
		row: func(l armor.Localized) Row {
			return Row{ID: l.ID, Name: l.Name, Summary: join(l.Type, l.ArmorClass, l.Stealth, l.Cost)}
		},
	})

	if c.Spells, err = spell.New(cfg.Deps, cfg.Translator); err != nil {
		return c, err
	}
	c.kinds = append(c.kinds, entry[spell.Spell, spell.Localized, spell.Filters]{
		Store: c.Spells,
		withName: func(f spell.Filters, name string) spell.Filters {
			f.Name = name
			return f
		},
		row: func(l spell.Localized) Row {
			return Row{ID: l.ID, Name: l.Name, Summary: join(l.Level, l.School, l.Components)}
		},
	})
	return c, nil
}

// Kind returns the store serving name, which may be a kind or its plural.
func (c *Catalog) Kind(name string) (Kind, error) {
	for _, k := range c.kinds {
		if string(k.Kind()) == name || k.Plural() == name {
			return k, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", name)
}

// Kinds returns every store, ordered by kind.
func (c *Catalog) Kinds() []Kind {
	out := append([]Kind(nil), c.kinds...)
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// KindNames lists the kinds the catalog serves.
func (c *Catalog) KindNames() []resource.Kind {
	names := make([]resource.Kind, 0, len(c.kinds))
	for _, k := range c.Kinds() {
		names = append(names, k.Kind())
	}
	return names
}

// Prefetch loads the lists and options of a campaign for every kind
// concurrently.
func (c *Catalog) Prefetch(ctx context.Context, campaignID string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for _, k := range c.kinds {
		k := k
		g.Go(func() error {
			if err := k.Prefetch(ctx, campaignID); err != nil {
				return errors.Wrapf(err, "[catalog] - prefetching %s", k.Plural())
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Catalog) Close() error {
	var err error
	for _, k := range c.kinds {
		err = errors.CombineErrors(err, k.Close())
	}
	c.kinds = nil
	return err
}

func join(parts ...string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " · ")
}
