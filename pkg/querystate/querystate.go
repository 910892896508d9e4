// Package querystate maps the filter/sort/search/page state of a task
// listing to and from its canonical query-string form, so that every
// reachable listing has exactly one shareable URL.
package querystate

import (
	"net/url"
	"strconv"

	"taskboard.dev/taskboard/pkg/api"
)

// FilterAll disables a status or priority filter.
const FilterAll = "all"

// Defaults for every field; a default-valued field is omitted from the
// encoded form and restored on decode.
const (
	DefaultStatus   = FilterAll
	DefaultPriority = FilterAll
	DefaultSearch   = ""
	DefaultSort     = api.SortRecent
	DefaultPage     = 1
)

// State is the immutable filter/sort/search/page value of one listing.
// Status and Priority hold either a valid enum value or FilterAll.
type State struct {
	Status   string
	Priority string
	Search   string
	Sort     api.SortKey
	Page     int
}

// Default returns the state every listing starts from.
func Default() State {
	return State{
		Status:   DefaultStatus,
		Priority: DefaultPriority,
		Search:   DefaultSearch,
		Sort:     DefaultSort,
		Page:     DefaultPage,
	}
}

// Change is a partial update merged into a State. Nil fields keep the
// current value.
type Change struct {
	Status   *string
	Priority *string
	Search   *string
	Sort     *api.SortKey
	Page     *int
}

// Merge applies c to s and returns the result. Any change that does
// not itself set Page resets the page to 1, so a new filter never
// lands on a page that may no longer exist.
func (s State) Merge(c Change) State {
	next := s
	if c.Status != nil {
		next.Status = *c.Status
	}
	if c.Priority != nil {
		next.Priority = *c.Priority
	}
	if c.Search != nil {
		next.Search = *c.Search
	}
	if c.Sort != nil {
		next.Sort = *c.Sort
	}
	if c.Page != nil {
		next.Page = *c.Page
	} else {
		next.Page = DefaultPage
	}
	return next
}

// Values encodes s into query parameters, omitting default-valued
// fields. Page 1 is always omitted so default URLs stay canonical.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Status != DefaultStatus && s.Status != "" {
		v.Set("status", s.Status)
	}
	if s.Priority != DefaultPriority && s.Priority != "" {
		v.Set("priority", s.Priority)
	}
	if s.Search != DefaultSearch {
		v.Set("search", s.Search)
	}
	if s.Sort != DefaultSort && s.Sort != "" {
		v.Set("sort", string(s.Sort))
	}
	if s.Page > DefaultPage {
		v.Set("page", strconv.Itoa(s.Page))
	}
	return v
}

// Encode returns the canonical query string for s, without a leading
// question mark.
func (s State) Encode() string {
	return s.Values().Encode()
}

// Decode parses a query string into a State. Missing fields take their
// defaults, unrecognized fields are ignored, and malformed or
// non-positive page numbers fall back to 1. Decode never fails: a
// query string that cannot be parsed at all yields the default state.
func Decode(query string) State {
	s := Default()

	v, err := url.ParseQuery(query)
	if err != nil {
		return s
	}
	return FromValues(v)
}

// FromValues is Decode over already-parsed query parameters.
func FromValues(v url.Values) State {
	s := Default()

	if raw := v.Get("status"); raw != "" {
		if raw == FilterAll || api.ValidStatus(api.TaskStatus(raw)) {
			s.Status = raw
		}
	}
	if raw := v.Get("priority"); raw != "" {
		if raw == FilterAll || api.ValidPriority(api.TaskPriority(raw)) {
			s.Priority = raw
		}
	}
	if raw := v.Get("search"); raw != "" {
		s.Search = raw
	}
	if raw := v.Get("sort"); raw != "" && api.ValidSortKey(api.SortKey(raw)) {
		s.Sort = api.SortKey(raw)
	}
	if raw := v.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			s.Page = page
		}
	}
	return s
}

// StatusFilter returns the status to filter by and whether a filter is
// active at all.
func (s State) StatusFilter() (api.TaskStatus, bool) {
	if s.Status == FilterAll || s.Status == "" {
		return "", false
	}
	return api.TaskStatus(s.Status), true
}

// PriorityFilter returns the priority to filter by and whether a
// filter is active.
func (s State) PriorityFilter() (api.TaskPriority, bool) {
	if s.Priority == FilterAll || s.Priority == "" {
		return "", false
	}
	return api.TaskPriority(s.Priority), true
}

// WithPage returns s positioned on the given page.
func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}
