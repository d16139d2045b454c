package tuition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery_Defaults(t *testing.T) {
	f := ParseListQuery("", "", "", "", "", "", "")

	require.NotNil(t, f.Status)
	assert.Equal(t, StatusApproved, *f.Status)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, "createdAt", f.SortField)
	assert.False(t, f.SortAsc)
	assert.Nil(t, f.Subject)
	assert.Equal(t, 0, f.Skip())
}

func TestParseListQuery_Normalizes(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		sortBy    string
		order     string
		wantPage  int
		wantLimit int
		wantSort  string
		wantAsc   bool
	}{
		{name: "explicit", page: "3", limit: "5", sortBy: "budget", order: "asc", wantPage: 3, wantLimit: 5, wantSort: "budget", wantAsc: true},
		{name: "negative page", page: "-2", limit: "5", wantPage: 1, wantLimit: 5, wantSort: "createdAt"},
		{name: "huge limit", page: "1", limit: "5000", wantPage: 1, wantLimit: MaxLimit, wantSort: "createdAt"},
		{name: "zero limit", page: "1", limit: "0", wantPage: 1, wantLimit: DefaultLimit, wantSort: "createdAt"},
		{name: "unknown sort field", sortBy: "password", order: "DESC", wantPage: 1, wantLimit: DefaultLimit, wantSort: "createdAt"},
		{name: "page past int range", page: "9223372036854775807", limit: "100", wantPage: MaxPage, wantLimit: MaxLimit, wantSort: "createdAt"},
		{name: "unparseable page", page: "9223372036854775808", limit: "5", wantPage: 1, wantLimit: 5, wantSort: "createdAt"},
		{name: "case insensitive order", sortBy: "subject", order: "ASC", wantPage: 1, wantLimit: DefaultLimit, wantSort: "subject", wantAsc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseListQuery(tt.page, tt.limit, "", "", "", tt.sortBy, tt.order)

			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.wantSort, f.SortField)
			assert.Equal(t, tt.wantAsc, f.SortAsc)
			assert.GreaterOrEqual(t, f.Skip(), 0)
		})
	}
}

func TestParseListQuery_TextFilters(t *testing.T) {
	f := ParseListQuery("2", "10", " math ", "Dhaka", "  ", "", "")

	require.NotNil(t, f.Subject)
	assert.Equal(t, "math", *f.Subject)
	require.NotNil(t, f.Location)
	assert.Equal(t, "Dhaka", *f.Location)
	assert.Nil(t, f.Class)
	assert.Equal(t, 10, f.Skip())
}

func TestListFilter_SkipSaturates(t *testing.T) {
	cases := []struct {
		filter ListFilter
		want   int
	}{
		{ListFilter{Page: 1, Limit: 10}, 0},
		{ListFilter{Page: 3, Limit: 10}, 20},
		{ListFilter{Page: 0, Limit: 10}, 0},
		{ListFilter{Page: 5, Limit: 0}, 0},
		{ListFilter{Page: math.MaxInt, Limit: MaxLimit}, math.MaxInt},
		{ListFilter{Page: MaxPage, Limit: MaxLimit}, (MaxPage - 1) * MaxLimit},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.filter.Skip(), "page=%d limit=%d", c.filter.Page, c.filter.Limit)
	}
}

func TestNewPagination_PagesIsCeil(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{99, 7, 15},
	}

	for _, c := range cases {
		p := NewPagination(ListFilter{Page: 1, Limit: c.limit}, c.total)
		assert.Equal(t, c.want, p.Pages, "total=%d limit=%d", c.total, c.limit)
		assert.Equal(t, c.total, p.Total)
	}
}
