package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/wesleyorama2/yampi-go/api"
)

// Formatter is responsible for formatting API calls in text format
type Formatter struct {
	Verbose bool
	NoColor bool
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
	}
}

func (f *Formatter) scheme() *ColorScheme {
	if f.NoColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

// FormatRequest formats the next call of req for display
func (f *Formatter) FormatRequest(req *api.Request) string {
	var buf strings.Builder
	scheme := f.scheme()
	data := NewRequestData(req)

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n", scheme.Method.Sprint(data.Method), scheme.URL.Sprint(data.URL)))

	if f.Verbose && len(data.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedStringKeys(data.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", scheme.HeaderKey.Sprint(key), data.Headers[key]))
		}
	}

	if data.Body != nil {
		body, err := json.Marshal(data.Body)
		if err == nil {
			buf.WriteString("  Body: ")
			buf.WriteString(formatJSONString(string(body)))
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *api.Response) string {
	var buf strings.Builder
	scheme := f.scheme()

	status := fmt.Sprintf("%d %s", resp.HTTPStatus, http.StatusText(resp.HTTPStatus))
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		scheme.Status(resp.HTTPStatus).Sprint(status),
		resp.Timing.TotalTime.Milliseconds()))

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:      %dms\n", t.DNSLookupTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:  %dms\n", t.TCPConnectTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:   %dms\n", t.TLSHandshakeTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:  %dms\n", t.ContentTransferTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Total:           %dms\n", t.TotalTime.Milliseconds()))

		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(resp.Header))
		for key := range resp.Header {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range resp.Header[key] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", scheme.HeaderKey.Sprint(key), value))
			}
		}
	}

	if raw := resp.Raw(); len(raw) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(string(raw)))
		buf.WriteString("\n")
	}

	if p := resp.Pagination(); p.TotalPages > 0 {
		buf.WriteString(fmt.Sprintf("  Page %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.Total))
	}

	return buf.String()
}

// FormatError formats a failed call. Validation errors list each rejected
// field with its messages.
func (f *Formatter) FormatError(err error) string {
	var buf strings.Builder
	scheme := f.scheme()
	data := NewErrorData(err)

	buf.WriteString(fmt.Sprintf("%s %s\n", ErrorIcon(f.NoColor), scheme.Error.Sprint(data.Error)))

	for _, field := range sortedFieldKeys(data.Fields) {
		for _, msg := range data.Fields[field] {
			buf.WriteString(fmt.Sprintf("  %s: %s\n", scheme.Field.Sprint(field), msg))
		}
	}

	var requestErr *api.RequestError
	if f.Verbose && errors.As(err, &requestErr) && requestErr.Response != nil {
		if raw := requestErr.Response.Raw(); len(raw) > 0 {
			buf.WriteString("  Body:\n")
			buf.WriteString(formatJSONString(string(raw)))
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FormatValues formats named values, one per line
func (f *Formatter) FormatValues(title string, values map[string]interface{}) string {
	var buf strings.Builder
	scheme := f.scheme()

	if title != "" {
		buf.WriteString(fmt.Sprintf("%s %s\n", InfoIcon(f.NoColor), scheme.Highlight.Sprint(title)))
	}
	for _, key := range sortedKeys(values) {
		buf.WriteString(fmt.Sprintf("  %s: %s\n", scheme.HeaderKey.Sprint(key), cell(values[key])))
	}
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedFieldKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
