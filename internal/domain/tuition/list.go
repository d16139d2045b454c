package tuition

import (
	"math"
	"strconv"
	"strings"
)

// sortable maps the sortBy values clients may send to stored field names.
var sortable = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"budget":    "budget",
	"subject":   "subject",
	"class":     "class",
	"location":  "location",
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Subject  *string
	Location *string
	Class    *string
	Status   *string

	Page      int
	Limit     int
	SortField string
	SortAsc   bool
}

// Skip is the number of matches before the requested page. It never goes negative,
// filters built outside ParseListQuery included.
func (f ListFilter) Skip() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// ParseListQuery normalizes raw query values into a public listing filter.
// Only approved postings are ever listed publicly.
func ParseListQuery(page, limit, subject, location, class, sortBy, order string) ListFilter {
	approved := StatusApproved

	f := ListFilter{
		Status:    &approved,
		Page:      atoiDefault(page, DefaultPage),
		Limit:     atoiDefault(limit, DefaultLimit),
		SortField: "createdAt",
		SortAsc:   strings.EqualFold(order, "asc"),
	}

	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	if field, ok := sortable[sortBy]; ok {
		f.SortField = field
	}

	f.Subject = nonEmpty(subject)
	f.Location = nonEmpty(location)
	f.Class = nonEmpty(class)

	return f
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(f ListFilter, total int64) Pagination {
	pages := int64(0)
	if f.Limit > 0 {
		pages = int64(math.Ceil(float64(total) / float64(f.Limit)))
	}
	return Pagination{Page: f.Page, Limit: f.Limit, Total: total, Pages: pages}
}

func atoiDefault(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
