package memory

import (
	"sort"

	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
)

// matches evaluates the wire encoding of server filters against r: objects of
// booleans are inclusion sets, objects of "min"/"max" are ranges, and booleans
// are toggles. Unknown predicate shapes match everything.
func matches(r record, filters map[string]interface{}) bool {
	for field, pred := range filters {
		switch p := pred.(type) {
		case bool:
			if v, _ := r[field].(bool); v != p {
				return false
			}
		case map[string]interface{}:
			if set, ok := asSet(p); ok {
				if !matchSet(r[field], set) {
					return false
				}
				continue
			}
			if !matchRange(r[field], p) {
				return false
			}
		}
	}
	return true
}

func asSet(p map[string]interface{}) (map[string]bool, bool) {
	set := make(map[string]bool, len(p))
	for k, v := range p {
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		set[k] = b
	}
	return set, true
}

// matchSet accepts a value, or a list of values, that hits at least one
// included entry (if any are included) and no excluded entry.
func matchSet(v interface{}, set map[string]bool) bool {
	var values []string
	switch t := v.(type) {
	case string:
		values = []string{t}
	case []interface{}:
		for _, e := range t {
			values = append(values, str(e))
		}
	}
	hasIncludes, included := false, false
	for _, b := range set {
		if b {
			hasIncludes = true
			break
		}
	}
	for _, v := range values {
		if b, ok := set[v]; ok {
			if !b {
				return false
			}
			included = true
		}
	}
	return !hasIncludes || included
}

func matchRange(v interface{}, p map[string]interface{}) bool {
	n, ok := v.(float64)
	if !ok {
		return false
	}
	if lo, ok := p["min"].(float64); ok && n < lo {
		return false
	}
	if hi, ok := p["max"].(float64); ok && n > hi {
		return false
	}
	return true
}

func sortRecords(rs []record, by string, dir resource.Direction, lang string) {
	if by == "" {
		by = "name"
	}
	compare := func(a, b record) int {
		switch av := a[by].(type) {
		case float64:
			bv, _ := b[by].(float64)
			return cmpFloat(av, bv)
		case string:
			return cmpString(av, str(b[by]))
		case map[string]interface{}:
			return cmpString(
				i18n.Normalize(localized(av, lang)),
				i18n.Normalize(localized(textOf(b[by]), lang)),
			)
		}
		return 0
	}
	sort.SliceStable(rs, func(i, j int) bool {
		c := compare(rs[i], rs[j])
		if c == 0 {
			c = cmpString(str(rs[i]["id"]), str(rs[j]["id"]))
		}
		if dir == resource.Desc {
			return c > 0
		}
		return c < 0
	})
}

func localized(m map[string]interface{}, lang string) string {
	t := make(i18n.Text, len(m))
	for l, v := range m {
		t[l] = str(v)
	}
	return t.In(lang)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
