// Package equipment specializes the resource store for gear: every equipment
// kind shares cost, weight, magic, and notes, and filters on cost, weight, and
// magic on top of the base name and sort filter.
package equipment

import (
	"strconv"
	"strings"

	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
)

// Equipment holds the attributes shared by every equipment kind. Kinds embed
// it next to resource.Resource.
type Equipment struct {
	// Cost is in copper pieces.
	Cost   int       `json:"cost"`
	Weight float64   `json:"weight"`
	Magic  bool      `json:"magic"`
	Notes  i18n.Text `json:"notes"`
}

// Schema validates the attributes shared by every equipment kind.
var Schema = resource.Schema.Extend("equipment", map[string]schema.Field{
	"cost":   {Type: schema.Integer},
	"weight": {Type: schema.Number},
	"magic":  {Type: schema.Bool},
	"notes":  {Type: schema.Text},
})

// Filters adds cost, weight, and magic predicates to the base filter.
type Filters struct {
	resource.Filters
	Cost   resource.Range `json:"cost"`
	Weight resource.Range `json:"weight"`
	Magic  *bool          `json:"magic,omitempty"`
}

// ServerFilterSet returns the equipment predicates. Kinds chain their own
// predicates onto it.
func (f Filters) ServerFilterSet() resource.ServerFilterSet {
	return resource.ServerFilterSet{}.
		Range("cost", f.Cost).
		Range("weight", f.Weight).
		Toggle("magic", f.Magic)
}

func (f Filters) ServerFilters() map[string]interface{} { return f.ServerFilterSet() }

var FiltersSchema = resource.FiltersSchema.Extend("equipment_filters", map[string]schema.Field{
	"cost":   {Type: schema.Range},
	"weight": {Type: schema.Range},
	"magic":  {Type: schema.Bool},
})

// DefaultFilters sorts by name and constrains nothing.
func DefaultFilters() Filters {
	return Filters{Filters: resource.Filters{OrderBy: "name", OrderDir: resource.Asc}}
}

// Localized is the display form of the shared equipment attributes.
type Localized struct {
	Cost   string
	Weight string
	Magic  bool
	Notes  string
}

// Localize renders e in lang. Units are looked up in t under "unit.*".
func Localize(t i18n.Translator, lang string, e Equipment) Localized {
	return Localized{
		Cost:   FormatCost(t, lang, e.Cost),
		Weight: FormatWeight(t, lang, e.Weight),
		Magic:  e.Magic,
		Notes:  e.Notes.In(lang),
	}
}

// FormatCost renders a cost in copper pieces using the largest coins that
// represent it exactly, e.g. 1500 is "15 gp" and 250 is "2 gp, 5 sp".
func FormatCost(t i18n.Translator, lang string, cp int) string {
	if cp == 0 {
		return "0 " + t.Translate(lang, "unit.gp")
	}
	var parts []string
	for _, c := range []struct {
		value int
		unit  string
	}{{100, "unit.gp"}, {10, "unit.sp"}, {1, "unit.cp"}} {
		if n := cp / c.value; n > 0 {
			parts = append(parts, strconv.Itoa(n)+" "+t.Translate(lang, c.unit))
			cp %= c.value
		}
	}
	return strings.Join(parts, ", ")
}

func FormatWeight(t i18n.Translator, lang string, lb float64) string {
	if lb == 0 {
		return "-"
	}
	return FormatNumber(lb) + " " + t.Translate(lang, "unit.lb")
}

// FormatNumber renders n with as few digits as needed.
func FormatNumber(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) }

// Translations declares the localized fields of an equipment kind: name, page,
// and notes.
func Translations[R any](meta func(*R) *resource.Resource, gear func(*R) *Equipment) []resource.TranslationField[R] {
	return append(
		resource.BaseTranslations(meta),
		resource.TextField("notes", func(r *R) *i18n.Text { return &gear(r).Notes }),
	)
}

// Config declares an equipment kind. Fields and FilterFields hold only what the
// kind adds on top of Equipment and Filters.
type Config[R store.Entity, L any, F store.Filter] struct {
	store.Deps
	Kind         resource.Kind
	Plural       string
	Fields       map[string]schema.Field
	FilterFields map[string]schema.Field
	Default      R
	// DefaultFilters must embed DefaultFilters().
	DefaultFilters F
	Meta           func(*R) *resource.Resource
	Gear           func(*R) *Equipment
	// Translations are the localized fields the kind adds beyond name, page,
	// and notes.
	Translations []resource.TranslationField[R]
	Localize     func(lang string, r R) L
	OptionKinds  []resource.Kind
}

// New builds the store of an equipment kind.
func New[R store.Entity, L any, F store.Filter](cfg Config[R, L, F]) (*store.Store[R, L, F], error) {
	var translations []resource.TranslationField[R]
	if cfg.Meta != nil && cfg.Gear != nil {
		translations = Translations(cfg.Meta, cfg.Gear)
	}
	return store.New(store.Config[R, L, F]{
		Deps:           cfg.Deps,
		Kind:           cfg.Kind,
		Plural:         cfg.Plural,
		Schema:         Schema.Extend(string(cfg.Kind), cfg.Fields),
		Default:        cfg.Default,
		FilterSchema:   FiltersSchema.Extend(string(cfg.Kind)+"_filters", cfg.FilterFields),
		DefaultFilters: cfg.DefaultFilters,
		Translations:   append(translations, cfg.Translations...),
		Localize:       cfg.Localize,
		OptionKinds:    cfg.OptionKinds,
	})
}
