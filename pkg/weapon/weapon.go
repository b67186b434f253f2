// Package weapon is the weapon kind: an equipment store with damage, type,
// and property attributes.
package weapon

import (
	"strings"

	"github.com/zuccha/dnd-portal-sub002/pkg/equipment"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
)

const (
	Kind   resource.Kind = "weapon"
	Plural               = "weapons"
)

var (
	Types       = []string{"simple", "martial"}
	DamageTypes = []string{
		"acid", "bludgeoning", "cold", "fire", "force", "lightning", "necrotic",
		"piercing", "poison", "psychic", "radiant", "slashing", "thunder",
	}
	Properties = []string{
		"ammunition", "finesse", "heavy", "light", "loading", "reach",
		"thrown", "two_handed", "versatile",
	}
)

type Weapon struct {
	resource.Resource
	equipment.Equipment
	Type            string   `json:"type"`
	Damage          string   `json:"damage"`
	DamageVersatile string   `json:"damage_versatile,omitempty"`
	DamageType      string   `json:"damage_type"`
	Properties      []string `json:"properties"`
	Melee           bool     `json:"melee"`
	Ranged          bool     `json:"ranged"`
	// RangeShort and RangeLong are in feet and only set for ranged and thrown
	// weapons.
	RangeShort *float64 `json:"range_short,omitempty"`
	RangeLong  *float64 `json:"range_long,omitempty"`
}

var fields = map[string]schema.Field{
	"type":             {Type: schema.String, Required: true, Enum: Types},
	"damage":           {Type: schema.String, Required: true},
	"damage_versatile": {Type: schema.String},
	"damage_type":      {Type: schema.String, Required: true, Enum: DamageTypes},
	"properties":       {Type: schema.StringSlice, Enum: Properties},
	"melee":            {Type: schema.Bool},
	"ranged":           {Type: schema.Bool},
	"range_short":      {Type: schema.Number},
	"range_long":       {Type: schema.Number},
}

type Filters struct {
	equipment.Filters
	Types       resource.Set `json:"types,omitempty"`
	DamageTypes resource.Set `json:"damage_types,omitempty"`
	Properties  resource.Set `json:"properties,omitempty"`
	Melee       *bool        `json:"melee,omitempty"`
	Ranged      *bool        `json:"ranged,omitempty"`
}

func (f Filters) ServerFilters() map[string]interface{} {
	return f.Filters.ServerFilterSet().
		Set("type", f.Types).
		Set("damage_type", f.DamageTypes).
		Set("properties", f.Properties).
		Toggle("melee", f.Melee).
		Toggle("ranged", f.Ranged)
}

var filterFields = map[string]schema.Field{
	"types":        {Type: schema.Set, Enum: Types},
	"damage_types": {Type: schema.Set, Enum: DamageTypes},
	"properties":   {Type: schema.Set, Enum: Properties},
	"melee":        {Type: schema.Bool},
	"ranged":       {Type: schema.Bool},
}

func DefaultFilters() Filters { return Filters{Filters: equipment.DefaultFilters()} }

// Default is the blank weapon new-weapon forms start from.
func Default() Weapon {
	return Weapon{
		Resource: resource.Resource{
			Kind:       Kind,
			Visibility: resource.Private,
			Name:       i18n.Text{},
		},
		Equipment:  equipment.Equipment{Notes: i18n.Text{}},
		Type:       "simple",
		Damage:     "1d4",
		DamageType: "bludgeoning",
		Properties: []string{},
		Melee:      true,
	}
}

// Localized is a weapon rendered in a display language. Raw is the weapon it
// was rendered from, for edit forms.
type Localized struct {
	equipment.Localized
	ID         string
	Name       string
	Campaign   string
	Page       string
	Type       string
	Damage     string
	Properties string
	Range      string
	Raw        Weapon
}

// Localizer renders weapons with the UI strings of t.
func Localizer(t i18n.Translator) func(lang string, w Weapon) Localized {
	return func(lang string, w Weapon) Localized {
		damage := w.Damage + " " + t.Translate(lang, "damage_type."+w.DamageType)
		if w.DamageVersatile != "" {
			damage += " (" + w.DamageVersatile + ")"
		}
		props := make([]string, len(w.Properties))
		for i, p := range w.Properties {
			props[i] = t.Translate(lang, "weapon.property."+p)
		}
		return Localized{
			Localized:  equipment.Localize(t, lang, w.Equipment),
			ID:         w.ID,
			Name:       w.Name.In(lang),
			Campaign:   w.CampaignName,
			Page:       w.PageIn(lang),
			Type:       t.Translate(lang, "weapon.type."+w.Type),
			Damage:     damage,
			Properties: strings.Join(props, ", "),
			Range:      formatRange(t, lang, w.RangeShort, w.RangeLong),
			Raw:        w,
		}
	}
}

func formatRange(t i18n.Translator, lang string, short, long *float64) string {
	if short == nil {
		return ""
	}
	out := equipment.FormatNumber(*short)
	if long != nil {
		out += "/" + equipment.FormatNumber(*long)
	}
	return out + " " + t.Translate(lang, "unit.ft")
}

type Store = store.Store[Weapon, Localized, Filters]

// New builds the weapon store.
func New(deps store.Deps, t i18n.Translator) (*Store, error) {
	return equipment.New(equipment.Config[Weapon, Localized, Filters]{
		Deps:           deps,
		Kind:           Kind,
		Plural:         Plural,
		Fields:         fields,
		FilterFields:   filterFields,
		Default:        Default(),
		DefaultFilters: DefaultFilters(),
		Meta:           func(w *Weapon) *resource.Resource { return &w.Resource },
		Gear:           func(w *Weapon) *equipment.Equipment { return &w.Equipment },
		Localize:       Localizer(t),
	})
}
