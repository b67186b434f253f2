// Package spell is the spell kind. Spells are not equipment: they build on the
// generic resource store directly.
package spell

import (
	"strconv"
	"strings"

	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
)

const (
	Kind   resource.Kind = "spell"
	Plural               = "spells"
)

var (
	Schools = []string{
		"abjuration", "conjuration", "divination", "enchantment",
		"evocation", "illusion", "necromancy", "transmutation",
	}
	Classes = []string{
		"bard", "cleric", "druid", "paladin", "ranger", "sorcerer", "warlock", "wizard",
	}
)

type Spell struct {
	resource.Resource
	// Level is 0 for cantrips.
	Level         int       `json:"level"`
	School        string    `json:"school"`
	Classes       []string  `json:"character_classes"`
	CastingTime   string    `json:"casting_time"`
	Duration      string    `json:"duration"`
	Range         string    `json:"range"`
	Verbal        bool      `json:"verbal"`
	Somatic       bool      `json:"somatic"`
	Material      bool      `json:"material"`
	Ritual        bool      `json:"ritual"`
	Concentration bool      `json:"concentration"`
	Description   i18n.Text `json:"description"`
	Materials     i18n.Text `json:"materials"`
	Upgrade       i18n.Text `json:"upgrade"`
}

var Schema = resource.Schema.Extend("spell", map[string]schema.Field{
	"level":             {Type: schema.Integer, Required: true},
	"school":            {Type: schema.String, Required: true, Enum: Schools},
	"character_classes": {Type: schema.StringSlice, Enum: Classes},
	"casting_time":      {Type: schema.String},
	"duration":          {Type: schema.String},
	"range":             {Type: schema.String},
	"verbal":            {Type: schema.Bool},
	"somatic":           {Type: schema.Bool},
	"material":          {Type: schema.Bool},
	"ritual":            {Type: schema.Bool},
	"concentration":     {Type: schema.Bool},
	"description":       {Type: schema.Text},
	"materials":         {Type: schema.Text},
	"upgrade":           {Type: schema.Text},
})

type Filters struct {
	resource.Filters
	Levels        resource.Range `json:"levels"`
	Schools       resource.Set   `json:"schools,omitempty"`
	Classes       resource.Set   `json:"character_classes,omitempty"`
	Ritual        *bool          `json:"ritual,omitempty"`
	Concentration *bool          `json:"concentration,omitempty"`
}

func (f Filters) ServerFilters() map[string]interface{} {
	return resource.ServerFilterSet{}.
		Range("level", f.Levels).
		Set("school", f.Schools).
		Set("character_classes", f.Classes).
		Toggle("ritual", f.Ritual).
		Toggle("concentration", f.Concentration)
}

var FiltersSchema = resource.FiltersSchema.Extend("spell_filters", map[string]schema.Field{
	"levels":            {Type: schema.Range},
	"schools":           {Type: schema.Set, Enum: Schools},
	"character_classes": {Type: schema.Set, Enum: Classes},
	"ritual":            {Type: schema.Bool},
	"concentration":     {Type: schema.Bool},
})

// DefaultFilters sorts spells by level.
func DefaultFilters() Filters {
	return Filters{Filters: resource.Filters{OrderBy: "level", OrderDir: resource.Asc}}
}

func Default() Spell {
	return Spell{
		Resource: resource.Resource{
			Kind:       Kind,
			Visibility: resource.Private,
			Name:       i18n.Text{},
		},
		School:      "abjuration",
		Classes:     []string{},
		Description: i18n.Text{},
		Materials:   i18n.Text{},
		Upgrade:     i18n.Text{},
	}
}

var Translations = append(
	resource.BaseTranslations(func(s *Spell) *resource.Resource { return &s.Resource }),
	resource.TextField("description", func(s *Spell) *i18n.Text { return &s.Description }),
	resource.TextField("materials", func(s *Spell) *i18n.Text { return &s.Materials }),
	resource.TextField("upgrade", func(s *Spell) *i18n.Text { return &s.Upgrade }),
)

type Localized struct {
	ID          string
	Name        string
	Campaign    string
	Page        string
	Level       string
	School      string
	Classes     string
	Components  string
	CastingTime string
	Duration    string
	Range       string
	Description string
	Upgrade     string
	Raw         Spell
}

func Localizer(t i18n.Translator) func(lang string, s Spell) Localized {
	return func(lang string, s Spell) Localized {
		classes := make([]string, len(s.Classes))
		for i, c := range s.Classes {
			classes[i] = t.Translate(lang, "class."+c)
		}
		return Localized{
			ID:          s.ID,
			Name:        s.Name.In(lang),
			Campaign:    s.CampaignName,
			Page:        s.PageIn(lang),
			Level:       level(t, lang, s.Level),
			School:      t.Translate(lang, "spell.school."+s.School),
			Classes:     strings.Join(classes, ", "),
			Components:  components(t, lang, s),
			CastingTime: s.CastingTime,
			Duration:    duration(t, lang, s),
			Range:       s.Range,
			Description: s.Description.In(lang),
			Upgrade:     s.Upgrade.In(lang),
			Raw:         s,
		}
	}
}

func level(t i18n.Translator, lang string, l int) string {
	if l == 0 {
		return t.Translate(lang, "spell.cantrip")
	}
	return t.Translate(lang, "spell.level") + " " + strconv.Itoa(l)
}

// components renders e.g. "V, S, M (a pinch of sulfur)".
func components(t i18n.Translator, lang string, s Spell) string {
	var parts []string
	if s.Verbal {
		parts = append(parts, t.Translate(lang, "spell.component.v"))
	}
	if s.Somatic {
		parts = append(parts, t.Translate(lang, "spell.component.s"))
	}
	if s.Material {
		m := t.Translate(lang, "spell.component.m")
		if materials := s.Materials.In(lang); materials != "" {
			m += " (" + materials + ")"
		}
		parts = append(parts, m)
	}
	return strings.Join(parts, ", ")
}

func duration(t i18n.Translator, lang string, s Spell) string {
	if s.Concentration {
		return t.Translate(lang, "spell.concentration") + ", " + s.Duration
	}
	return s.Duration
}

type Store = store.Store[Spell, Localized, Filters]

func New(deps store.Deps, t i18n.Translator) (*Store, error) {
	return store.New(store.Config[Spell, Localized, Filters]{
		Deps:           deps,
		Kind:           Kind,
		Plural:         Plural,
		Schema:         Schema,
		Default:        Default(),
		FilterSchema:   FiltersSchema,
		DefaultFilters: DefaultFilters(),
		Translations:   Translations,
		Localize:       Localizer(t),
	})
}
