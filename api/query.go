package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Query parameter names understood by the API.
const (
	QueryInclude      = "include"
	QuerySearch       = "search"
	QuerySearchFields = "searchFields"
	QueryDate         = "date"
	QueryOrderBy      = "orderBy"
	QuerySortedBy     = "sortedBy"
	QueryLimit        = "limit"
	QueryPage         = "page"
	QuerySkipCache    = "skipCache"
)

// DefaultPeriodField is the date field filtered by Period.
const DefaultPeriodField = "created_at"

// Include appends relations to the include query parameter.
//
//	req.Include("sku").Include("services") // include=sku,services
func (r *Request) Include(values ...string) *Request {
	return r.include(values, true)
}

// Includes is an alias of Include.
func (r *Request) Includes(values ...string) *Request {
	return r.include(values, true)
}

// SetInclude replaces the include query parameter.
func (r *Request) SetInclude(values ...string) *Request {
	return r.include(values, false)
}

func (r *Request) include(values []string, appendMode bool) *Request {
	for _, v := range values {
		if v == "" {
			return r.fail(newBuilderError(ErrInvalidInclude, r, http.StatusNotAcceptable,
				"Include must be a not empty string"))
		}
	}

	items := make([]string, 0, len(values)+1)
	if prior, ok := r.query[QueryInclude]; ok && appendMode {
		items = append(items, prior)
	}
	items = append(items, values...)

	return r.SetQuery(QueryInclude, strings.Join(items, ","))
}

// Search appends field:value filters to the search query parameter. Fields of
// one call are emitted in sorted order.
//
//	req.Search(map[string]string{"name": "Shirt"}) // search=name:Shirt
func (r *Request) Search(fields map[string]string) *Request {
	return r.genericSearch(QuerySearch, fields, true)
}

// SetSearch replaces the search query parameter.
func (r *Request) SetSearch(fields map[string]string) *Request {
	return r.genericSearch(QuerySearch, fields, false)
}

// SearchFields appends field:operator pairs to the searchFields query
// parameter, e.g. {"name": "like"}.
func (r *Request) SearchFields(fields map[string]string) *Request {
	return r.genericSearch(QuerySearchFields, fields, true)
}

// SetSearchFields replaces the searchFields query parameter.
func (r *Request) SetSearchFields(fields map[string]string) *Request {
	return r.genericSearch(QuerySearchFields, fields, false)
}

func (r *Request) genericSearch(key string, fields map[string]string, appendMode bool) *Request {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			return r.fail(newBuilderError(ErrInvalidSearchValue, r, http.StatusNotAcceptable,
				"Search value must be a not empty string"))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	segments := make([]string, 0, len(names)+1)
	if prior, ok := r.query[key]; ok && appendMode {
		segments = append(segments, prior)
	}
	for _, name := range names {
		segments = append(segments, name+":"+fields[name])
	}

	return r.SetQuery(key, strings.Join(segments, ";"))
}

// Period filters created_at between start and end (YYYY-MM-DD).
func (r *Request) Period(start, end string) *Request {
	return r.PeriodOf(DefaultPeriodField, start, end)
}

// PeriodOf filters field between start and end.
func (r *Request) PeriodOf(field, start, end string) *Request {
	return r.SetQuery(QueryDate, field+":"+start+"|"+end)
}

// NoPeriod removes the date filter.
func (r *Request) NoPeriod() *Request {
	return r.unsetQuery(QueryDate)
}

// OrderBy sets the field results are ordered by.
func (r *Request) OrderBy(field string) *Request {
	return r.SetQuery(QueryOrderBy, field)
}

// NoOrderBy removes the ordering field.
func (r *Request) NoOrderBy() *Request {
	return r.unsetQuery(QueryOrderBy)
}

// SortBy sets the sort direction ("asc" or "desc").
func (r *Request) SortBy(direction string) *Request {
	return r.SetQuery(QuerySortedBy, direction)
}

// SortedBy is an alias of SortBy.
func (r *Request) SortedBy(direction string) *Request {
	return r.SortBy(direction)
}

// NoSortBy removes the sort direction.
func (r *Request) NoSortBy() *Request {
	return r.unsetQuery(QuerySortedBy)
}

// Limit sets the page size.
func (r *Request) Limit(n int) *Request {
	return r.SetQuery(QueryLimit, strconv.Itoa(n))
}

// NoLimit removes the page size.
func (r *Request) NoLimit() *Request {
	return r.unsetQuery(QueryLimit)
}

// Page selects the page of a listing, starting at 1.
func (r *Request) Page(n int) *Request {
	return r.SetQuery(QueryPage, strconv.Itoa(n))
}

// NoPage removes the page selection.
func (r *Request) NoPage() *Request {
	return r.unsetQuery(QueryPage)
}

// SkipCache asks the API to bypass its response cache.
func (r *Request) SkipCache() *Request {
	return r.SetQuery(QuerySkipCache, "true")
}
