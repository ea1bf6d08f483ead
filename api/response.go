package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// TimingInfo stores how long each phase of the HTTP call took.
type TimingInfo struct {
	StartTime time.Time

	DNSLookupTime    time.Duration
	TCPConnectTime   time.Duration
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is measured from the end of the last completed
	// connection phase.
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// Response is a read-only view over a decoded API payload.
type Response struct {
	// HTTPStatus is the status line code of the HTTP exchange. It is zero for
	// responses built with NewResponse.
	HTTPStatus int

	// Header holds the response headers of the HTTP exchange.
	Header http.Header

	// Timing holds the phase durations of the HTTP exchange.
	Timing TimingInfo

	raw  []byte
	body map[string]interface{}
	data interface{}
	meta map[string]interface{}
}

// NewResponse builds a Response from raw JSON ([]byte or string) or from an
// already decoded map.
//
// Example:
//
//	resp, err := api.NewResponse(`{"data":{"id":1},"meta":{}}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Get("data.id").Int())
func NewResponse(raw interface{}) (*Response, error) {
	r := &Response{}

	switch v := raw.(type) {
	case nil:
		r.body = map[string]interface{}{}
	case []byte:
		if err := r.decode(v); err != nil {
			return nil, err
		}
	case string:
		if err := r.decode([]byte(v)); err != nil {
			return nil, err
		}
	case map[string]interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "error encoding response body")
		}
		r.raw = encoded
		r.body = v
	default:
		return nil, errors.Errorf("unsupported response payload type %T", raw)
	}

	r.data = map[string]interface{}{}
	if data, ok := r.body["data"]; ok && data != nil {
		r.data = data
	}

	r.meta = map[string]interface{}{}
	if meta, ok := r.body["meta"].(map[string]interface{}); ok {
		r.meta = meta
	}

	return r, nil
}

func (r *Response) decode(raw []byte) error {
	r.raw = raw
	r.body = map[string]interface{}{}
	if len(raw) == 0 {
		return nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return errors.Wrap(err, "error decoding response body")
	}
	if decoded != nil {
		r.body = decoded
	}
	return nil
}

// Body returns the whole decoded payload.
func (r *Response) Body() map[string]interface{} {
	return r.body
}

// Raw returns the payload bytes.
func (r *Response) Raw() []byte {
	return r.raw
}

// Data returns the "data" key, or an empty map when it is absent.
func (r *Response) Data() interface{} {
	return r.data
}

// Meta returns the "meta" key, or an empty map when it is absent.
func (r *Response) Meta() map[string]interface{} {
	return r.meta
}

// StatusCode returns the "status_code" key of the payload, or 0 when it is
// absent. It is unrelated to HTTPStatus.
func (r *Response) StatusCode() int {
	code, ok := r.body["status_code"]
	if !ok {
		return 0
	}
	switch c := code.(type) {
	case float64:
		return int(c)
	case int:
		return c
	case json.Number:
		n, _ := c.Int64()
		return int(n)
	}
	return 0
}

// Get looks up a gjson path (e.g. "data.0.sku") in the payload.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Pagination returns the typed view of meta.pagination. A zero Pagination is
// returned when the payload carries none.
func (r *Response) Pagination() *Pagination {
	p := &Pagination{}
	raw, ok := r.meta["pagination"]
	if !ok {
		return p
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(encoded, p)
	return p
}
