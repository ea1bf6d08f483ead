package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// errorBody is the shape of API error responses.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// fieldErrors decodes the per-field messages. Payloads that do not follow the
// field->messages shape yield nil.
func (b errorBody) fieldErrors() map[string][]string {
	if len(b.Errors) == 0 {
		return nil
	}
	var fields map[string][]string
	if err := json.Unmarshal(b.Errors, &fields); err != nil {
		return nil
	}
	return fields
}

// Do executes the call. A non-empty method or route overrides the current
// one, and body is merged into the current body. The route is reset on every
// exit path, including failures.
//
// Status 422 yields a *ValidationError; any other failure yields a
// *RequestError. A builder error recorded earlier in the chain is returned
// without contacting the API.
func (r *Request) Do(ctx context.Context, method, route string, body map[string]interface{}) (*Response, error) {
	defer func() {
		r.ResetRoute()
		r.err = nil
	}()

	if method != "" {
		r.SetMethod(method)
	}
	if route != "" {
		r.SetRoute(route)
	}
	r.AddBody(body)

	if r.err != nil {
		return nil, r.err
	}

	httpReq, err := r.build(ctx)
	if err != nil {
		return nil, newTransportError(r, err)
	}

	timing := TimingInfo{StartTime: time.Now()}
	httpReq = httpReq.WithContext(withTiming(httpReq.Context(), &timing))

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, newTransportError(r, errors.Wrap(err, "error invoking API"))
	}
	transferStart := time.Now()
	raw, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	timing.ContentTransferTime = time.Since(transferStart)
	timing.TotalTime = time.Since(timing.StartTime)
	if err != nil {
		return nil, &RequestError{
			Message:    "error reading response body",
			StatusCode: httpResp.StatusCode,
			Cause:      errors.Wrap(err, "error reading response body"),
			request:    r,
		}
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, r.mapFailure(httpResp, raw)
	}

	resp, err := NewResponse(raw)
	if err != nil {
		return nil, &RequestError{
			Message:    err.Error(),
			StatusCode: httpResp.StatusCode,
			Cause:      err,
			request:    r,
		}
	}
	resp.HTTPStatus = httpResp.StatusCode
	resp.Header = httpResp.Header
	resp.Timing = timing

	return resp, nil
}

func (r *Request) mapFailure(httpResp *http.Response, raw []byte) error {
	status := httpResp.StatusCode

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &RequestError{
			Message:    http.StatusText(status),
			StatusCode: status,
			Cause:      errors.Wrapf(err, "error decoding %d response body", status),
			request:    r,
		}
	}
	resp, err := NewResponse(raw)
	if err != nil {
		return &RequestError{
			Message:    http.StatusText(status),
			StatusCode: status,
			Cause:      err,
			request:    r,
		}
	}
	resp.HTTPStatus = status
	resp.Header = httpResp.Header

	reqErr := &RequestError{
		Message:    body.Message,
		StatusCode: status,
		Response:   resp,
		Cause:      errors.Errorf("received %d from API", status),
		request:    r,
	}

	if status == http.StatusUnprocessableEntity {
		return &ValidationError{
			RequestError: reqErr,
			Errors:       body.fieldErrors(),
		}
	}
	return reqErr
}

func (r *Request) build(ctx context.Context) (*http.Request, error) {
	payload := r.RequestBody()

	reqURL, err := url.Parse(r.FullRoute())
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing route %q", r.FullRoute())
	}
	reqURL.RawQuery = encodeQuery(payload.Query).Encode()

	var bodyReader io.Reader
	if payload.JSON != nil {
		encoded, err := json.Marshal(payload.JSON)
		if err != nil {
			return nil, errors.Wrap(err, "error marshaling request body")
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, reqURL.String(), bodyReader)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request %s %s", r.method, reqURL)
	}

	httpReq.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range payload.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// encodeQuery flattens payload query values the way form encoders of the
// API's own clients do: maps become key[field]=value and slices become
// key[0]=value, recursively. Scalars are formatted with fmt.Sprint.
func encodeQuery(query map[string]interface{}) url.Values {
	values := make(url.Values, len(query))
	for key, value := range query {
		addQueryValue(values, key, value)
	}
	return values
}

func addQueryValue(values url.Values, key string, value interface{}) {
	if value == nil {
		values.Set(key, "")
		return
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map:
		for _, k := range v.MapKeys() {
			addQueryValue(values, fmt.Sprintf("%s[%v]", key, k.Interface()), v.MapIndex(k).Interface())
		}
	case reflect.Slice, reflect.Array:
		if b, ok := value.([]byte); ok {
			values.Set(key, string(b))
			return
		}
		for i := 0; i < v.Len(); i++ {
			addQueryValue(values, fmt.Sprintf("%s[%d]", key, i), v.Index(i).Interface())
		}
	default:
		values.Set(key, fmt.Sprint(value))
	}
}

// Values encodes the query parameters exactly as they are sent.
func (p Payload) Values() url.Values {
	return encodeQuery(p.Query)
}

// Get executes a GET call; query is merged into the body, which travels as
// query string parameters.
func (r *Request) Get(ctx context.Context, query map[string]interface{}) (*Response, error) {
	return r.Do(ctx, MethodGet, r.route, query)
}

// Post executes a POST call with body merged into the JSON body.
func (r *Request) Post(ctx context.Context, body map[string]interface{}) (*Response, error) {
	return r.Do(ctx, MethodPost, r.route, body)
}

// Put executes a PUT call with body merged into the JSON body.
func (r *Request) Put(ctx context.Context, body map[string]interface{}) (*Response, error) {
	return r.Do(ctx, MethodPut, r.route, body)
}

// Patch executes a PATCH call with body merged into the JSON body.
func (r *Request) Patch(ctx context.Context, body map[string]interface{}) (*Response, error) {
	return r.Do(ctx, MethodPatch, r.route, body)
}

// Delete executes the removal call. It is sent with the PATCH verb, not
// DELETE, and query is merged into the JSON body like Patch.
func (r *Request) Delete(ctx context.Context, query map[string]interface{}) (*Response, error) {
	return r.Do(ctx, MethodPatch, r.route, query)
}
