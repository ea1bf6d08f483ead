package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/yampi-go/api"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
	// FormatTable renders the response data as columns
	FormatTable OutputFormat = "table"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q (use text, json, yaml or table)", name)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *api.Request) string
	FormatResponse(resp *api.Response) string
	FormatError(err error) string
	FormatValues(title string, values map[string]interface{}) string
}

// RequestData represents the structured data of a prepared API call
type RequestData struct {
	Method    string                 `json:"method" yaml:"method"`
	URL       string                 `json:"url" yaml:"url"`
	Headers   map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query     map[string]string      `json:"query,omitempty" yaml:"query,omitempty"`
	Body      map[string]interface{} `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string                 `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an API call
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an API response
type ResponseData struct {
	StatusCode int                    `json:"statusCode" yaml:"statusCode"`
	Headers    map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Data       interface{}            `json:"data" yaml:"data"`
	Meta       map[string]interface{} `json:"meta,omitempty" yaml:"meta,omitempty"`
	Timing     *TimingData            `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp  string                 `json:"timestamp" yaml:"timestamp"`
}

// ErrorData represents a failed call or a rejected builder state
type ErrorData struct {
	Error      string              `json:"error" yaml:"error"`
	StatusCode int                 `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Fields     map[string][]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Body       interface{}         `json:"body,omitempty" yaml:"body,omitempty"`
}

// NewRequestData captures what the next call of req will send.
func NewRequestData(req *api.Request) RequestData {
	payload := req.RequestBody()
	values := payload.Values()

	fullURL := req.FullRoute()
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	query := make(map[string]string, len(values))
	for key := range values {
		query[key] = strings.Join(values[key], ",")
	}

	return RequestData{
		Method:    req.Method(),
		URL:       fullURL,
		Headers:   payload.Headers,
		Query:     query,
		Body:      payload.JSON,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// NewResponseData flattens resp. Timing is only included when verbose.
func NewResponseData(resp *api.Response, verbose bool) ResponseData {
	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	data := ResponseData{
		StatusCode: resp.HTTPStatus,
		Data:       resp.Data(),
		Meta:       resp.Meta(),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if verbose {
		data.Headers = headers
		data.Timing = newTimingData(resp.Timing)
	}
	return data
}

func newTimingData(t api.TimingInfo) *TimingData {
	return &TimingData{
		DNSLookup:       t.DNSLookupTime.Milliseconds(),
		TCPConnection:   t.TCPConnectTime.Milliseconds(),
		TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
		TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
		ContentTransfer: t.ContentTransferTime.Milliseconds(),
		Total:           t.TotalTime.Milliseconds(),
	}
}

// NewErrorData extracts the status, field messages and decoded body carried
// by API errors.
func NewErrorData(err error) ErrorData {
	data := ErrorData{Error: err.Error()}

	var validationErr *api.ValidationError
	if errors.As(err, &validationErr) {
		data.Fields = validationErr.Errors
	}

	var requestErr *api.RequestError
	if errors.As(err, &requestErr) {
		data.StatusCode = requestErr.StatusCode
		if requestErr.Response != nil {
			data.Body = requestErr.Response.Body()
		}
		return data
	}

	var builderErr *api.BuilderError
	if errors.As(err, &builderErr) {
		data.StatusCode = builderErr.Code
	}
	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal output: %s"}`, err)
	}
	return string(out)
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *api.Request) string {
	return f.marshal(NewRequestData(req))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *api.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatError formats an error as JSON
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(NewErrorData(err))
}

// FormatValues formats a set of named values as a JSON object
func (f *JSONFormatter) FormatValues(title string, values map[string]interface{}) string {
	return f.marshal(values)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal output: %s\n", err)
	}
	return string(out)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *api.Request) string {
	return f.marshal(NewRequestData(req))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *api.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatError formats an error as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(NewErrorData(err))
}

// FormatValues formats a set of named values as a YAML mapping
func (f *YAMLFormatter) FormatValues(title string, values map[string]interface{}) string {
	return f.marshal(values)
}

// TableFormatter renders response data as aligned columns. Requests are
// rendered as a single row and errors fall back to the text formatter.
type TableFormatter struct {
	Verbose bool
	NoColor bool
}

// FormatRequest formats a request as a one-row table
func (f *TableFormatter) FormatRequest(req *api.Request) string {
	data := NewRequestData(req)
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("METHOD", "URL")
	table.AddRow(data.Method, data.URL)
	return table.String() + "\n"
}

// FormatResponse renders a list of records as one row per record, with one
// column per scalar field, and a single record as field/value rows.
func (f *TableFormatter) FormatResponse(resp *api.Response) string {
	table := uitable.New()
	table.MaxColWidth = 50

	switch data := resp.Data().(type) {
	case []interface{}:
		columns := tableColumns(data)
		if len(columns) == 0 {
			return "No records\n"
		}
		header := make([]interface{}, len(columns))
		for i, c := range columns {
			header[i] = strings.ToUpper(c)
		}
		table.AddRow(header...)
		for _, item := range data {
			record, _ := item.(map[string]interface{})
			row := make([]interface{}, len(columns))
			for i, c := range columns {
				row[i] = cell(record[c])
			}
			table.AddRow(row...)
		}
	case map[string]interface{}:
		table.AddRow("FIELD", "VALUE")
		for _, key := range sortedKeys(data) {
			table.AddRow(key, cell(data[key]))
		}
	default:
		table.AddRow("VALUE")
		table.AddRow(cell(data))
	}

	out := table.String() + "\n"
	if p := resp.Pagination(); p.TotalPages > 0 {
		out += fmt.Sprintf("\nPage %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.Total)
	}
	return out
}

// FormatError formats an error the same way the text formatter does
func (f *TableFormatter) FormatError(err error) string {
	return (&Formatter{Verbose: f.Verbose, NoColor: f.NoColor}).FormatError(err)
}

// FormatValues renders named values as name/value rows
func (f *TableFormatter) FormatValues(title string, values map[string]interface{}) string {
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("NAME", "VALUE")
	for _, key := range sortedKeys(values) {
		table.AddRow(key, cell(values[key]))
	}
	return table.String() + "\n"
}

// tableColumns returns the sorted union of scalar fields across records.
func tableColumns(records []interface{}) []string {
	seen := map[string]bool{}
	for _, item := range records {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for key, value := range record {
			switch value.(type) {
			case map[string]interface{}, []interface{}:
				continue
			}
			seen[key] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func cell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case map[string]interface{}, []interface{}:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
	return fmt.Sprint(value)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	case FormatTable:
		return &TableFormatter{Verbose: verbose, NoColor: noColor}
	default:
		return &Formatter{Verbose: verbose, NoColor: noColor}
	}
}
