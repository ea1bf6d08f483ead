package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/api"
)

// queryOptions are the query DSL flags of get and delete.
type queryOptions struct {
	includes     []string
	search       []string
	searchFields []string
	orderBy      string
	sort         string
	limit        int
	page         int
	period       string
	query        []string
	skipCache    bool
}

func (q *queryOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&q.includes, "include", nil, "Relation to include, e.g. skus (repeatable)")
	flags.StringArrayVar(&q.search, "search", nil, "Search term as field=value (repeatable)")
	flags.StringArrayVar(&q.searchFields, "search-fields", nil, "Search operator as field=operator, e.g. name=like (repeatable)")
	flags.StringVar(&q.orderBy, "order-by", "", "Field to order by")
	flags.StringVar(&q.sort, "sort", "", "Sort direction: asc or desc")
	flags.IntVar(&q.limit, "limit", 0, "Page size")
	flags.IntVar(&q.page, "page", 0, "Page number")
	flags.StringVar(&q.period, "period", "", "Date range as start,end[,field] (field defaults to "+api.DefaultPeriodField+")")
	flags.StringArrayVarP(&q.query, "query", "q", nil, "Extra query parameter as key=value (repeatable)")
	flags.BoolVar(&q.skipCache, "skip-cache", false, "Ask the API to bypass its cache")
}

// apply runs the flags through the request's query builder. Builder errors
// are left on the request and surface when it is sent.
func (q *queryOptions) apply(req *api.Request) error {
	if len(q.includes) > 0 {
		req.Include(q.includes...)
	}

	if len(q.search) > 0 {
		fields, err := parsePairs("search", q.search)
		if err != nil {
			return err
		}
		req.Search(fields)
	}
	if len(q.searchFields) > 0 {
		fields, err := parsePairs("search-fields", q.searchFields)
		if err != nil {
			return err
		}
		req.SearchFields(fields)
	}

	if q.orderBy != "" {
		req.OrderBy(q.orderBy)
	}
	if q.sort != "" {
		req.SortBy(q.sort)
	}
	if q.limit > 0 {
		req.Limit(q.limit)
	}
	if q.page > 0 {
		req.Page(q.page)
	}

	if q.period != "" {
		field, start, end, err := parsePeriod(q.period)
		if err != nil {
			return err
		}
		req.PeriodOf(field, start, end)
	}

	extra, err := parsePairs("query", q.query)
	if err != nil {
		return err
	}
	for key, value := range extra {
		req.SetQuery(key, value)
	}

	if q.skipCache {
		req.SkipCache()
	}
	return nil
}

// parsePeriod reads start,end[,field].
func parsePeriod(value string) (field, start, end string, err error) {
	parts := strings.Split(value, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", errors.Errorf("invalid --period value %q, expected start,end[,field]", value)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	field = api.DefaultPeriodField
	if len(parts) == 3 && parts[2] != "" {
		field = parts[2]
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.Errorf("invalid --period value %q, start and end are required", value)
	}
	return field, parts[0], parts[1], nil
}

func newGetCmd(o *rootOptions) *cobra.Command {
	var (
		q queryOptions
		r responseOptions
	)
	cmd := &cobra.Command{
		Use:   "get ROUTE...",
		Short: "Fetch a resource or a listing",
		Example: `  yampi get catalog products --include skus --limit 10
  yampi get orders --search status=paid --period 2024-01-01,2024-01-31
  yampi get catalog products 42 --extract name='$.data.name'
  yampi get orders 7 --raw '$.data.number'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			req, err := s.newRequest()
			if err != nil {
				return err
			}
			if err := route(req.Request, args); err != nil {
				return err
			}
			if err := q.apply(req.Request); err != nil {
				return err
			}
			return s.call(cmd, req.Request, api.MethodGet, req.Get, r)
		},
	}
	q.addFlags(cmd)
	r.addFlags(cmd)
	return cmd
}

func newDeleteCmd(o *rootOptions) *cobra.Command {
	var (
		q queryOptions
		r responseOptions
	)
	cmd := &cobra.Command{
		Use:   "delete ROUTE...",
		Short: "Remove a resource",
		Long: `Remove a resource.

Removals are sent with the PATCH verb, as the Yampi SDK does.`,
		Example: `  yampi delete catalog products 42`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			req, err := s.newRequest()
			if err != nil {
				return err
			}
			if err := route(req.Request, args); err != nil {
				return err
			}
			if err := q.apply(req.Request); err != nil {
				return err
			}
			return s.call(cmd, req.Request, api.MethodPatch, req.Delete, r)
		},
	}
	q.addFlags(cmd)
	r.addFlags(cmd)
	return cmd
}
