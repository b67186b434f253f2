package resource

import (
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is the sort key and direction sent with list fetches.
type Order struct {
	By  string
	Dir Direction
}

// Filters is the part of every kind's filter that the server never sees (the
// name) plus the sort order. Kinds embed it and add their own predicates.
type Filters struct {
	Name     string    `json:"name"`
	OrderBy  string    `json:"order_by"`
	OrderDir Direction `json:"order_dir"`
}

// NameFilter returns the free-text needle matched locally against names.
func (f Filters) NameFilter() string { return f.Name }

func (f Filters) Ordering() Order { return Order{By: f.OrderBy, Dir: f.OrderDir} }

// ServerFilters returns the predicates sent to the backend. The base filter
// has none; kinds override it.
func (f Filters) ServerFilters() map[string]interface{} { return map[string]interface{}{} }

// FiltersSchema validates the base filter. Kind filter schemas extend it.
var FiltersSchema = schema.New("resource_filters", map[string]schema.Field{
	"name":      {Type: schema.String},
	"order_by":  {Type: schema.String, Required: true},
	"order_dir": {Type: schema.String, Required: true, Enum: []string{string(Asc), string(Desc)}},
})

// Set is an inclusion set over an enumerated attribute: true includes a value,
// false excludes it, and absent values are unconstrained.
type Set map[string]bool

// Empty reports whether the set constrains nothing.
func (s Set) Empty() bool { return len(s) == 0 }

// Range bounds a numeric attribute. Nil bounds are open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) Empty() bool { return r.Min == nil && r.Max == nil }

// Bound returns a pointer to v, for building Range literals.
func Bound(v float64) *float64 { return &v }

// ServerFilterSet collects the non-empty predicates of a kind filter into the
// wire encoding. Empty sets, open ranges, and unset toggles are omitted.
type ServerFilterSet map[string]interface{}

func (s ServerFilterSet) Set(field string, v Set) ServerFilterSet {
	if !v.Empty() {
		s[field] = v
	}
	return s
}

func (s ServerFilterSet) Range(field string, v Range) ServerFilterSet {
	if !v.Empty() {
		s[field] = v
	}
	return s
}

func (s ServerFilterSet) Toggle(field string, v *bool) ServerFilterSet {
	if v != nil {
		s[field] = *v
	}
	return s
}
