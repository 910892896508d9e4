package querystate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard.dev/taskboard/pkg/api"
)

func TestEncodeOmitsDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, "", s.Encode(), "default state must encode to an empty query")

	s.Status = "completed"
	encoded := s.Encode()
	assert.Equal(t, "status=completed", encoded)
	assert.NotContains(t, encoded, "page=")
}

func TestRoundTrip(t *testing.T) {
	states := []State{
		Default(),
		{Status: "completed", Priority: "all", Search: "", Sort: api.SortRecent, Page: 1},
		{Status: "in_progress", Priority: "urgent", Search: "deploy", Sort: api.SortDueDate, Page: 3},
		{Status: "all", Priority: "low", Search: "a b&c", Sort: api.SortTitle, Page: 2},
		{Status: "todo", Priority: "all", Search: "", Sort: api.SortPriority, Page: 1},
	}

	for _, s := range states {
		got := Decode(s.Encode())
		assert.Equal(t, s, got, "decode(encode(s)) must reproduce s for %+v", s)
	}
}

func TestDecodeFillsDefaults(t *testing.T) {
	s := Decode("status=completed")

	assert.Equal(t, "completed", s.Status)
	assert.Equal(t, "all", s.Priority)
	assert.Equal(t, "", s.Search)
	assert.Equal(t, api.SortRecent, s.Sort)
	assert.Equal(t, 1, s.Page)
}

func TestDecodeMalformedPage(t *testing.T) {
	for _, query := range []string{"page=0", "page=-2", "page=abc", "page=1.5", "page="} {
		s := Decode(query)
		assert.Equal(t, 1, s.Page, "query %q must fall back to page 1", query)
	}

	assert.Equal(t, 7, Decode("page=7").Page)
}

func TestDecodeIgnoresUnknownAndInvalid(t *testing.T) {
	s := Decode("status=bogus&priority=nope&sort=weird&utm_source=mail")
	assert.Equal(t, Default(), s)
}

func TestMergeResetsPage(t *testing.T) {
	s := State{Status: "todo", Priority: "all", Search: "", Sort: api.SortRecent, Page: 4}

	completed := "completed"
	next := s.Merge(Change{Status: &completed})
	assert.Equal(t, "completed", next.Status)
	assert.Equal(t, 1, next.Page, "a filter change must reset the page")

	page := 3
	next = s.Merge(Change{Page: &page})
	assert.Equal(t, 3, next.Page, "an explicit page change must be preserved")
	assert.Equal(t, "todo", next.Status)
}

func TestFilterAccessors(t *testing.T) {
	s := Default()
	_, active := s.StatusFilter()
	assert.False(t, active)
	_, active = s.PriorityFilter()
	assert.False(t, active)

	s.Status = "completed"
	s.Priority = "high"
	status, active := s.StatusFilter()
	assert.True(t, active)
	assert.Equal(t, api.StatusCompleted, status)
	priority, active := s.PriorityFilter()
	assert.True(t, active)
	assert.Equal(t, api.PriorityHigh, priority)
}
