package roster

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseSearchFilter reads a SearchFilter from query parameters. A missing or
// malformed page yields 0, which lists the first page.
func ParseSearchFilter(q url.Values) SearchFilter {
	f := SearchFilter{
		SearchTerm:   q.Get("search_term"),
		RoleFilterID: strings.TrimSpace(q.Get("role_filter_id")),
		Sort:         strings.TrimSpace(q.Get("sort")),
		Order:        strings.TrimSpace(q.Get("order")),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && n > 0 {
		f.Page = n
	}
	return f
}

// QueryParams is the inverse of ParseSearchFilter; empty fields are omitted.
func (f SearchFilter) QueryParams() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search_term", f.SearchTerm)
	set("role_filter_id", f.RoleFilterID)
	set("sort", f.Sort)
	set("order", f.Order)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

// WithPage returns a copy of f requesting page n.
func (f SearchFilter) WithPage(n int) SearchFilter {
	f.Page = n
	return f
}

// FilterPatch holds toolbar changes; nil fields keep their current value.
type FilterPatch struct {
	SearchTerm   *string
	RoleFilterID *string
	Sort         *string
	Order        *string
}

func (p FilterPatch) applyTo(f SearchFilter) SearchFilter {
	if p.SearchTerm != nil {
		f.SearchTerm = *p.SearchTerm
	}
	if p.RoleFilterID != nil {
		f.RoleFilterID = *p.RoleFilterID
	}
	if p.Sort != nil {
		f.Sort = *p.Sort
	}
	if p.Order != nil {
		f.Order = *p.Order
	}
	return f
}

// ParseFilterPatch reads the toolbar fields present in q. Absent fields stay
// nil so UpdateFilters keeps their current value.
func ParseFilterPatch(q url.Values) FilterPatch {
	field := func(k string) *string {
		if !q.Has(k) {
			return nil
		}
		v := q.Get(k)
		if k != "search_term" {
			v = strings.TrimSpace(v)
		}
		return &v
	}
	return FilterPatch{
		SearchTerm:   field("search_term"),
		RoleFilterID: field("role_filter_id"),
		Sort:         field("sort"),
		Order:        field("order"),
	}
}
