// Package resource defines the shape shared by every campaign-scoped entity:
// identity, ownership, visibility, and localized fields, together with the
// options, filters, and merge rules the stores build on.
package resource

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
)

// Kind distinguishes resource schemas, e.g. "weapon" or "spell".
type Kind string

// Key identifies a single resource of a kind.
type Key struct {
	ID   string
	Kind Kind
}

func (k Key) Validate() error {
	if k.ID == "" {
		return errors.New("[resource] - id is required")
	}
	if k.Kind == "" {
		return errors.New("[resource] - kind is required")
	}
	return nil
}

func (k Key) String() string { return fmt.Sprintf("%s:%s", k.Kind, k.ID) }

// Visibility controls who can see a resource outside its campaign.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Resource holds the attributes every kind carries. Kinds embed it.
type Resource struct {
	ID           string      `json:"id"`
	Kind         Kind        `json:"kind"`
	CampaignID   string      `json:"campaign_id"`
	CampaignName string      `json:"campaign_name"`
	Visibility   Visibility  `json:"visibility"`
	Name         i18n.Text   `json:"name"`
	Page         i18n.Number `json:"page,omitempty"`
}

// Meta returns the common attributes. Kinds embedding Resource inherit it.
func (r Resource) Meta() Resource { return r }

func (r Resource) Key() Key { return Key{ID: r.ID, Kind: r.Kind} }

// Schema validates the common attributes of a fetched resource. Kind schemas
// extend it.
var Schema = schema.New("resource", map[string]schema.Field{
	"id":            {Type: schema.String, Required: true},
	"kind":          {Type: schema.String},
	"campaign_id":   {Type: schema.String, Required: true},
	"campaign_name": {Type: schema.String},
	"visibility": {
		Type:     schema.String,
		Required: true,
		Enum:     []string{string(Public), string(Private)},
	},
	"name": {Type: schema.Text},
	"page": {Type: schema.NumberText},
})

// Fields carries a partial set of attributes for create and update calls. The
// backend stores kind attributes and translations in separate tables, so the
// two travel as sibling Fields values.
type Fields map[string]interface{}

// PageIn returns the page reference in lang, or "" when the resource has none.
func (r Resource) PageIn(lang string) string {
	p, ok := r.Page.In(lang)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}
