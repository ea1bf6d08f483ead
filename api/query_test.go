package api

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInclude(t *testing.T) {
	req := URL("http://local.test")
	assert.NotContains(t, req.Query(), QueryInclude)

	req.Include("sku")
	assert.Equal(t, "sku", req.Query()[QueryInclude])

	req.Include("services")
	assert.Equal(t, "sku,services", req.Query()[QueryInclude])

	req.Includes("test")
	assert.Equal(t, "sku,services,test", req.Query()[QueryInclude])

	req.Includes("test2", "test3")
	assert.Equal(t, "sku,services,test,test2,test3", req.Query()[QueryInclude])

	req.SetInclude("clean")
	assert.Equal(t, "clean", req.Query()[QueryInclude])
	require.NoError(t, req.Err())

	req.Include("ok", "")
	assert.True(t, errors.Is(req.Err(), ErrInvalidInclude))
	assert.Equal(t, "clean", req.Query()[QueryInclude])
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		appendFn  func(*Request, map[string]string) *Request
		replaceFn func(*Request, map[string]string) *Request
	}{
		{name: "search", key: QuerySearch, appendFn: (*Request).Search, replaceFn: (*Request).SetSearch},
		{name: "searchFields", key: QuerySearchFields, appendFn: (*Request).SearchFields, replaceFn: (*Request).SetSearchFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := URL("http://local.test")
			assert.NotContains(t, req.Query(), tt.key)

			tt.appendFn(req, map[string]string{"name": "Lucas Collete"})
			assert.Equal(t, "name:Lucas Collete", req.Query()[tt.key])

			tt.appendFn(req, map[string]string{"some": "thing"})
			assert.Equal(t, "name:Lucas Collete;some:thing", req.Query()[tt.key])

			tt.replaceFn(req, map[string]string{"new": "search"})
			assert.Equal(t, "new:search", req.Query()[tt.key])

			tt.replaceFn(req, map[string]string{"b": "2", "a": "1"})
			assert.Equal(t, "a:1;b:2", req.Query()[tt.key])
			require.NoError(t, req.Err())

			tt.appendFn(req, map[string]string{"invalid": ""})
			assert.True(t, errors.Is(req.Err(), ErrInvalidSearchValue))
			assert.Equal(t, "a:1;b:2", req.Query()[tt.key])
		})
	}
}

func TestPeriod(t *testing.T) {
	req := URL("http://local.test")

	req.NoPeriod()
	assert.NotContains(t, req.Query(), QueryDate)

	req.Period("2020-01-01", "2020-01-31")
	assert.Equal(t, "created_at:2020-01-01|2020-01-31", req.Query()[QueryDate])

	req.PeriodOf("updated_at", "2020-02-01", "2020-02-31")
	assert.Equal(t, "updated_at:2020-02-01|2020-02-31", req.Query()[QueryDate])

	req.Period("2020-02-01", "2020-02-31")
	assert.Equal(t, "created_at:2020-02-01|2020-02-31", req.Query()[QueryDate])

	req.NoPeriod()
	assert.NotContains(t, req.Query(), QueryDate)
}

func TestSimpleQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		set      func(*Request)
		expected string
		unset    func(*Request) *Request
	}{
		{name: "orderBy", key: QueryOrderBy, set: func(r *Request) { r.OrderBy("name") }, expected: "name", unset: (*Request).NoOrderBy},
		{name: "sortBy", key: QuerySortedBy, set: func(r *Request) { r.SortBy("asc") }, expected: "asc", unset: (*Request).NoSortBy},
		{name: "sortedBy", key: QuerySortedBy, set: func(r *Request) { r.SortedBy("desc") }, expected: "desc", unset: (*Request).NoSortBy},
		{name: "limit", key: QueryLimit, set: func(r *Request) { r.Limit(10) }, expected: "10", unset: (*Request).NoLimit},
		{name: "page", key: QueryPage, set: func(r *Request) { r.Page(2) }, expected: "2", unset: (*Request).NoPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := URL("http://local.test")

			// unsetting before any set must not fail
			tt.unset(req)
			assert.NotContains(t, req.Query(), tt.key)

			tt.set(req)
			assert.Equal(t, tt.expected, req.Query()[tt.key])

			tt.unset(req)
			assert.NotContains(t, req.Query(), tt.key)
			assert.NoError(t, req.Err())
		})
	}
}

func TestSkipCache(t *testing.T) {
	req := URL("http://local.test")
	assert.NotContains(t, req.Query(), QuerySkipCache)

	req.SkipCache()
	assert.Equal(t, "true", req.Query()[QuerySkipCache])
}
