package catalog

import "github.com/zuccha/dnd-portal-sub002/pkg/i18n"

// Strings is the UI string table every kind renders with.
var Strings = i18n.Table{
	"unit.gp": {"en": "gp", "it": "mo"},
	"unit.sp": {"en": "sp", "it": "ma"},
	"unit.cp": {"en": "cp", "it": "mr"},
	"unit.lb": {"en": "lb", "it": "lb"},
	"unit.ft": {"en": "ft", "it": "piedi"},

	"ability.str": {"en": "Str", "it": "For"},
	"ability.dex": {"en": "Dex", "it": "Des"},

	"damage_type.acid":        {"en": "acid", "it": "acido"},
	"damage_type.bludgeoning": {"en": "bludgeoning", "it": "contundenti"},
	"damage_type.cold":        {"en": "cold", "it": "freddo"},
	"damage_type.fire":        {"en": "fire", "it": "fuoco"},
	"damage_type.force":       {"en": "force", "it": "forza"},
	"damage_type.lightning":   {"en": "lightning", "it": "fulmine"},
	"damage_type.necrotic":    {"en": "necrotic", "it": "necrotici"},
	"damage_type.piercing":    {"en": "piercing", "it": "perforanti"},
	"damage_type.poison":      {"en": "poison", "it": "veleno"},
	"damage_type.psychic":     {"en": "psychic", "it": "psichici"},
	"damage_type.radiant":     {"en": "radiant", "it": "radiosi"},
	"damage_type.slashing":    {"en": "slashing", "it": "taglienti"},
	"damage_type.thunder":     {"en": "thunder", "it": "tuono"},

	"weapon.type.simple":         {"en": "Simple", "it": "Semplice"},
	"weapon.type.martial":        {"en": "Martial", "it": "Da guerra"},
	"weapon.property.ammunition": {"en": "Ammunition", "it": "Munizioni"},
	"weapon.property.finesse":    {"en": "Finesse", "it": "Accurata"},
	"weapon.property.heavy":      {"en": "Heavy", "it": "Pesante"},
	"weapon.property.light":      {"en": "Light", "it": "Leggera"},
	"weapon.property.loading":    {"en": "Loading", "it": "Ricarica"},
	"weapon.property.reach":      {"en": "Reach", "it": "Portata"},
	"weapon.property.thrown":     {"en": "Thrown", "it": "Da lancio"},
	"weapon.property.two_handed": {"en": "Two-Handed", "it": "A due mani"},
	"weapon.property.versatile":  {"en": "Versatile", "it": "Versatile"},

	"armor.type.light":           {"en": "Light", "it": "Leggera"},
	"armor.type.medium":          {"en": "Medium", "it": "Media"},
	"armor.type.heavy":           {"en": "Heavy", "it": "Pesante"},
	"armor.type.shield":          {"en": "Shield", "it": "Scudo"},
	"armor.max":                  {"en": "max", "it": "max"},
	"armor.stealth.disadvantage": {"en": "Disadvantage", "it": "Svantaggio"},

	"spell.cantrip":              {"en": "Cantrip", "it": "Trucchetto"},
	"spell.level":                {"en": "Level", "it": "Livello"},
	"spell.concentration":        {"en": "Concentration", "it": "Concentrazione"},
	"spell.component.v":          {"en": "V", "it": "V"},
	"spell.component.s":          {"en": "S", "it": "S"},
	"spell.component.m":          {"en": "M", "it": "M"},
	"spell.school.abjuration":    {"en": "Abjuration", "it": "Abiurazione"},
	"spell.school.conjuration":   {"en": "Conjuration", "it": "Evocazione"},
	"spell.school.divination":    {"en": "Divination", "it": "Divinazione"},
	"spell.school.enchantment":   {"en": "Enchantment", "it": "Ammaliamento"},
	"spell.school.evocation":     {"en": "Evocation", "it": "Invocazione"},
	"spell.school.illusion":      {"en": "Illusion", "it": "Illusione"},
	"spell.school.necromancy":    {"en": "Necromancy", "it": "Necromanzia"},
	"spell.school.transmutation": {"en": "Transmutation", "it": "Trasmutazione"},

	"class.bard":     {"en": "Bard", "it": "Bardo"},
	"class.cleric":   {"en": "Cleric", "it": "Chierico"},
	"class.druid":    {"en": "Druid", "it": "Druido"},
	"class.paladin":  {"en": "Paladin", "it": "Paladino"},
	"class.ranger":   {"en": "Ranger", "it": "Ranger"},
	"class.sorcerer": {"en": "Sorcerer", "it": "Stregone"},
	"class.warlock":  {"en": "Warlock", "it": "Warlock"},
	"class.wizard":   {"en": "Wizard", "it": "Mago"},
}
