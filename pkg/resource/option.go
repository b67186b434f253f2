package resource

import (
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
)

// Option is the name-only projection of a resource used by pick-lists and
// cross-references.
type Option struct {
	ID   string    `json:"id"`
	Kind Kind      `json:"kind"`
	Name i18n.Text `json:"name"`
}

var OptionSchema = schema.New("resource_option", map[string]schema.Field{
	"id":   {Type: schema.String, Required: true},
	"kind": {Type: schema.String, Required: true},
	"name": {Type: schema.Text},
})

// LocalizedOption is an Option with its label resolved in a display language.
type LocalizedOption struct {
	ID    string
	Kind  Kind
	Label string
	Name  i18n.Text
}

func (o Option) Localize(lang string) LocalizedOption {
	return LocalizedOption{ID: o.ID, Kind: o.Kind, Label: o.Name.In(lang), Name: o.Name}
}
