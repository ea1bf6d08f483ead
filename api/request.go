package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Base URLs of the hosted API environments.
const (
	ProductionURL = "https://api.dooki.com.br"
	SandboxURL    = "https://api-sandbox.dooki.com.br"
	LocalURL      = "http://api.test"
)

const (
	// DefaultVersion is the API version segment used unless WithVersion is given.
	DefaultVersion = "v2"

	// UserAgent is sent with every call.
	UserAgent = "yampi-go-sdk"
)

// HTTP verbs accepted by SetMethod.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodPatch  = http.MethodPatch
	MethodDelete = http.MethodDelete
)

// Param buckets accepted by SetParam.
const (
	BucketHeaders = "headers"
	BucketQuery   = "query"
	BucketBody    = "body"
)

// aliasExempt lists the first route segments that skip the merchant alias.
var aliasExempt = map[string]bool{
	"auth":  true,
	"users": true,
	"pvt":   true,
}

// Request is a mutable, fluent builder for a single API call. Every builder
// method mutates the receiver and returns it, so a chain always works on one
// instance. The route is reset after each execution.
//
// A Request is not safe for concurrent use.
type Request struct {
	url         string
	version     string
	method      string
	merchant    string
	route       string
	headers     map[string]string
	query       map[string]string
	body        map[string]interface{}
	forceAlias  bool
	forgetAlias bool
	client      Doer
	// ownsClient is false while client is a caller-supplied *http.Client.
	ownsClient  bool

	// err is the first builder error since the last execution.
	err error
}

// New returns a Request bound to baseURL. Trailing slashes are stripped.
func New(baseURL string, opts ...Option) *Request {
	r := &Request{
		url:     strings.TrimRight(baseURL, "/"),
		version: DefaultVersion,
		method:  MethodGet,
		headers: make(map[string]string),
		query:   make(map[string]string),
		body:    make(map[string]interface{}),
		client:  &http.Client{Timeout: DefaultTimeout},

		ownsClient: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Production returns a Request bound to the production API.
func Production(opts ...Option) *Request {
	return New(ProductionURL, opts...)
}

// Sandbox returns a Request bound to the sandbox API.
func Sandbox(opts ...Option) *Request {
	return New(SandboxURL, opts...)
}

// Local returns a Request bound to a local API stack.
func Local(opts ...Option) *Request {
	return New(LocalURL, opts...)
}

// URL returns a Request bound to an arbitrary base URL.
func URL(u string, opts ...Option) *Request {
	return New(u, opts...)
}

// URL returns the base URL without trailing slashes.
func (r *Request) URL() string {
	return r.url
}

// Version returns the API version segment.
func (r *Request) Version() string {
	return r.version
}

// UserAgent returns the User-Agent sent with every call.
func (r *Request) UserAgent() string {
	return UserAgent
}

// Method returns the verb of the next call.
func (r *Request) Method() string {
	return r.method
}

// Route returns the route relative to the version and merchant alias.
func (r *Request) Route() string {
	return r.route
}

// Merchant returns the merchant alias.
func (r *Request) Merchant() string {
	return r.merchant
}

// Err returns the first builder error recorded since the last execution.
func (r *Request) Err() error {
	return r.err
}

func (r *Request) fail(err error) *Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

// SetMethod sets the HTTP verb. Anything outside GET, POST, PUT, PATCH and
// DELETE records ErrInvalidMethod.
func (r *Request) SetMethod(method string) *Request {
	switch method {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		r.method = method
		return r
	}
	return r.fail(newBuilderError(ErrInvalidMethod, r, http.StatusMethodNotAllowed,
		"%s is not a valid HTTP method. Use GET, POST, PUT, PATCH or DELETE instead.", method))
}

// SetRoute replaces the route. Leading slashes are stripped.
func (r *Request) SetRoute(route string) *Request {
	r.route = strings.TrimLeft(route, "/")
	return r
}

// ResetRoute clears the route.
func (r *Request) ResetRoute() *Request {
	return r.SetRoute("")
}

// Path appends name and args as route segments.
//
//	req.Path("catalog").Path("products", 123) // catalog/products/123
func (r *Request) Path(name string, args ...interface{}) *Request {
	segments := make([]string, 0, len(args)+2)
	segments = append(segments, r.route, name)
	for _, arg := range args {
		segments = append(segments, fmt.Sprint(arg))
	}
	return r.SetRoute(strings.Join(segments, "/"))
}

// SetParam sets key in the headers, query or body bucket, overwriting any
// previous value.
func (r *Request) SetParam(bucket, key string, value interface{}) *Request {
	switch bucket {
	case BucketHeaders:
		r.headers[key] = fmt.Sprint(value)
	case BucketQuery:
		r.query[key] = fmt.Sprint(value)
	case BucketBody:
		r.body[key] = value
	default:
		return r.fail(newBuilderError(ErrInvalidParam, r, http.StatusNotAcceptable,
			"%s is not a valid property for Request. Use headers, query or body.", bucket))
	}
	return r
}

// SetBody replaces the body with body.
func (r *Request) SetBody(body map[string]interface{}) *Request {
	r.body = make(map[string]interface{}, len(body))
	return r.AddBody(body)
}

// AddBody merges body into the current body.
func (r *Request) AddBody(body map[string]interface{}) *Request {
	for key, value := range body {
		r.SetParam(BucketBody, key, value)
	}
	return r
}

// Body returns a copy of the body fields.
func (r *Request) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(r.body))
	for k, v := range r.body {
		body[k] = v
	}
	return body
}

// SetQuery sets a single query parameter.
func (r *Request) SetQuery(key string, value interface{}) *Request {
	return r.SetParam(BucketQuery, key, value)
}

// AddQueries merges queries into the query parameters.
func (r *Request) AddQueries(queries map[string]interface{}) *Request {
	for key, value := range queries {
		r.SetParam(BucketQuery, key, value)
	}
	return r
}

// Query returns a copy of the query parameters.
func (r *Request) Query() map[string]string {
	query := make(map[string]string, len(r.query))
	for k, v := range r.query {
		query[k] = v
	}
	return query
}

// ClearQuery removes every query parameter.
func (r *Request) ClearQuery() *Request {
	r.query = make(map[string]string)
	return r
}

func (r *Request) unsetQuery(key string) *Request {
	delete(r.query, key)
	return r
}

// AddHeader sets a header sent with every following call.
func (r *Request) AddHeader(key, value string) *Request {
	return r.SetParam(BucketHeaders, key, value)
}

// Headers returns a copy of the custom headers. User-Agent is not included.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	return headers
}

// SetMerchant sets the merchant alias injected into tenant routes.
func (r *Request) SetMerchant(alias string) *Request {
	r.merchant = strings.TrimLeft(alias, "/")
	return r
}

// ForceAlias injects the merchant alias even into auth, users and pvt routes.
func (r *Request) ForceAlias() *Request {
	r.forceAlias = true
	return r
}

// ForgetAlias drops the merchant alias from every route. It wins over
// ForceAlias.
func (r *Request) ForgetAlias() *Request {
	r.forgetAlias = true
	return r
}

// FullRoute joins base URL, version, merchant alias and route, skipping empty
// segments.
func (r *Request) FullRoute() string {
	first := strings.SplitN(r.route, "/", 2)[0]

	merchant := ""
	if !r.forgetAlias && (!aliasExempt[first] || r.forceAlias) {
		merchant = r.merchant
	}

	segments := make([]string, 0, 4)
	for _, s := range []string{r.url, r.version, merchant, r.route} {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, "/")
}

// Payload is the wire shape of a call: headers, query string parameters and,
// for every verb but GET, the JSON body.
type Payload struct {
	Headers map[string]string
	Query   map[string]interface{}

	// JSON is nil for GET calls, whose body fields travel in Query.
	JSON map[string]interface{}
}

// RequestBody computes the payload of the next call.
func (r *Request) RequestBody() Payload {
	headers := r.Headers()
	headers["User-Agent"] = r.UserAgent()

	query := make(map[string]interface{}, len(r.query)+len(r.body))
	for k, v := range r.query {
		query[k] = v
	}

	if r.method == MethodGet {
		for k, v := range r.body {
			query[k] = v
		}
		return Payload{Headers: headers, Query: query}
	}

	return Payload{Headers: headers, Query: query, JSON: r.Body()}
}
