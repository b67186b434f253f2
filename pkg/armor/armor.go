// Package armor is the armor kind: an equipment store with armor class and
// stealth attributes.
package armor

import (
	"strconv"

	"github.com/zuccha/dnd-portal-sub002/pkg/equipment"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
)

const (
	Kind   resource.Kind = "armor"
	Plural               = "armors"
)

var Types = []string{"light", "medium", "heavy", "shield"}

type Armor struct {
	resource.Resource
	equipment.Equipment
	Type       string `json:"type"`
	ArmorClass int    `json:"armor_class"`
	// MaxDexterityBonus caps the dexterity modifier added to ArmorClass. Nil
	// means uncapped; zero means none is added.
	MaxDexterityBonus   *int `json:"max_dexterity_bonus,omitempty"`
	RequiredStrength    int  `json:"required_strength"`
	StealthDisadvantage bool `json:"disadvantage_on_stealth"`
}

var fields = map[string]schema.Field{
	"type":                    {Type: schema.String, Required: true, Enum: Types},
	"armor_class":             {Type: schema.Integer, Required: true},
	"max_dexterity_bonus":     {Type: schema.Integer},
	"required_strength":       {Type: schema.Integer},
	"disadvantage_on_stealth": {Type: schema.Bool},
}

type Filters struct {
	equipment.Filters
	Types               resource.Set `json:"types,omitempty"`
	StealthDisadvantage *bool        `json:"disadvantage_on_stealth,omitempty"`
}

func (f Filters) ServerFilters() map[string]interface{} {
	return f.Filters.ServerFilterSet().
		Set("type", f.Types).
		Toggle("disadvantage_on_stealth", f.StealthDisadvantage)
}

var filterFields = map[string]schema.Field{
	"types":                   {Type: schema.Set, Enum: Types},
	"disadvantage_on_stealth": {Type: schema.Bool},
}

func DefaultFilters() Filters { return Filters{Filters: equipment.DefaultFilters()} }

func Default() Armor {
	return Armor{
		Resource: resource.Resource{
			Kind:       Kind,
			Visibility: resource.Private,
			Name:       i18n.Text{},
		},
		Equipment:  equipment.Equipment{Notes: i18n.Text{}},
		Type:       "light",
		ArmorClass: 11,
	}
}

// Localized is an armor rendered in a display language, with the armor it was
// rendered from in Raw.
type Localized struct {
	equipment.Localized
	ID         string
	Name       string
	Campaign   string
	Page       string
	Type       string
	ArmorClass string
	Strength   string
	Stealth    string
	Raw        Armor
}

func Localizer(t i18n.Translator) func(lang string, a Armor) Localized {
	return func(lang string, a Armor) Localized {
		l := Localized{
			Localized:  equipment.Localize(t, lang, a.Equipment),
			ID:         a.ID,
			Name:       a.Name.In(lang),
			Campaign:   a.CampaignName,
			Page:       a.PageIn(lang),
			Type:       t.Translate(lang, "armor.type."+a.Type),
			ArmorClass: armorClass(t, lang, a),
			Raw:        a,
		}
		if a.RequiredStrength > 0 {
			l.Strength = t.Translate(lang, "ability.str") + " " + strconv.Itoa(a.RequiredStrength)
		}
		if a.StealthDisadvantage {
			l.Stealth = t.Translate(lang, "armor.stealth.disadvantage")
		}
		return l
	}
}

// armorClass renders e.g. "12 + Dex (max 2)" for medium armor and "+2" for
// shields.
func armorClass(t i18n.Translator, lang string, a Armor) string {
	if a.Type == "shield" {
		return "+" + strconv.Itoa(a.ArmorClass)
	}
	ac := strconv.Itoa(a.ArmorClass)
	dex := t.Translate(lang, "ability.dex")
	switch {
	case a.MaxDexterityBonus == nil:
		return ac + " + " + dex
	case *a.MaxDexterityBonus == 0:
		return ac
	default:
		return ac + " + " + dex + " (" + t.Translate(lang, "armor.max") + " " + strconv.Itoa(*a.MaxDexterityBonus) + ")"
	}
}

type Store = store.Store[Armor, Localized, Filters]

func New(deps store.Deps, t i18n.Translator) (*Store, error) {
	return equipment.New(equipment.Config[Armor, Localized, Filters]{
		Deps:           deps,
		Kind:           Kind,
		Plural:         Plural,
		Fields:         fields,
		FilterFields:   filterFields,
		Default:        Default(),
		DefaultFilters: DefaultFilters(),
		Meta:           func(a *Armor) *resource.Resource { return &a.Resource },
		Gear:           func(a *Armor) *equipment.Equipment { return &a.Equipment },
		Localize:       Localizer(t),
	})
}
