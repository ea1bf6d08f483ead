package output

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/yampi-go/api"
)

func testResponse(t *testing.T, status int, body string) *api.Response {
	t.Helper()
	resp, err := api.NewResponse(body)
	if err != nil {
		t.Fatalf("Failed to build response: %v", err)
	}
	resp.HTTPStatus = status
	resp.Header = http.Header{"Content-Type": []string{"application/json"}}
	resp.Timing = api.TimingInfo{
		DNSLookupTime:       10 * time.Millisecond,
		TCPConnectTime:      20 * time.Millisecond,
		TLSHandshakeTime:    30 * time.Millisecond,
		TimeToFirstByte:     40 * time.Millisecond,
		ContentTransferTime: 50 * time.Millisecond,
		TotalTime:           150 * time.Millisecond,
	}
	return resp
}

func assertContainsAll(t *testing.T, output string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, output)
		}
	}
}

func TestFormatter_FormatRequest(t *testing.T) {
	formatter := NewFormatter(true, true) // verbose, no color

	req := api.URL("https://api.example.com").
		SetMerchant("store").
		SetRoute("catalog/products").
		Include("skus").
		Limit(10)
	req.AddHeader("X-Trace", "abc")

	output := formatter.FormatRequest(req)

	assertContainsAll(t, output,
		"REQUEST: GET https://api.example.com/v2/store/catalog/products?",
		"include=skus",
		"limit=10",
		"Headers:",
		"X-Trace: abc",
		"User-Agent: yampi-go-sdk",
	)
	if strings.Contains(output, "Body:") {
		t.Error("GET calls carry no JSON body")
	}
}

func TestFormatter_FormatRequestWithBody(t *testing.T) {
	formatter := NewFormatter(false, true)

	req := api.URL("https://api.example.com").
		SetMethod(api.MethodPost).
		SetMerchant("store").
		SetRoute("customers").
		AddBody(map[string]interface{}{"name": "Ana"})

	output := formatter.FormatRequest(req)

	assertContainsAll(t, output,
		"REQUEST: POST https://api.example.com/v2/store/customers",
		"Body:",
		`"name": "Ana"`,
	)
	if strings.Contains(output, "Headers:") {
		t.Error("Headers are only printed in verbose mode")
	}
}

func TestFormatter_FormatResponse(t *testing.T) {
	resp := testResponse(t, 200, `{"data":{"id":7},"meta":{"pagination":{"total":30,"current_page":2,"total_pages":3}}}`)

	output := NewFormatter(false, true).FormatResponse(resp)
	assertContainsAll(t, output,
		"RESPONSE: 200 OK (150ms)",
		"Body:",
		`"id": 7`,
		"Page 2 of 3 (30 total)",
	)
	if strings.Contains(output, "Timing:") {
		t.Error("Timing is only printed in verbose mode")
	}
}

func TestFormatter_FormatResponseWithTiming(t *testing.T) {
	resp := testResponse(t, 201, `{"data":{}}`)

	output := NewFormatter(true, true).FormatResponse(resp)
	assertContainsAll(t, output,
		"RESPONSE: 201 Created (150ms)",
		"Timing:",
		"DNS Lookup:      10ms",
		"TCP Connection:  20ms",
		"TLS Handshake:   30ms",
		"Time to First Byte: 40ms",
		"Content Transfer:  50ms",
		"Total:           150ms",
		"Headers:",
		"Content-Type: application/json",
	)
}

func TestFormatter_FormatError(t *testing.T) {
	body, _ := api.NewResponse(`{"message":"invalid","errors":{"email":["is required","must be valid"]}}`)
	err := &api.ValidationError{
		RequestError: &api.RequestError{Message: "invalid", StatusCode: 422, Response: body},
		Errors:       map[string][]string{"email": {"is required", "must be valid"}},
	}

	output := NewFormatter(true, true).FormatError(err)
	assertContainsAll(t, output,
		"✗ yampi: validation failed: invalid",
		"email: is required",
		"email: must be valid",
		"Body:",
	)
}

func TestFormatter_FormatBuilderError(t *testing.T) {
	err := api.Local().SetMethod("TRACE").Err()

	output := NewFormatter(false, true).FormatError(err)
	assertContainsAll(t, output, "✗", "TRACE")
}

func TestFormatter_FormatPlainError(t *testing.T) {
	output := NewFormatter(false, true).FormatError(fmt.Errorf("boom"))
	if output != "✗ boom\n" {
		t.Errorf("Unexpected output %q", output)
	}
}

func TestFormatter_FormatValues(t *testing.T) {
	output := NewFormatter(false, true).FormatValues("Extracted", map[string]interface{}{
		"id":    float64(12),
		"name":  "Ana",
		"skus":  []interface{}{"a"},
		"empty": nil,
	})

	assertContainsAll(t, output, "ℹ Extracted", "id: 12", "name: Ana", `skus: ["a"]`, "empty: \n")
	if strings.Index(output, "empty") > strings.Index(output, "id:") {
		t.Error("Values must be printed in sorted order")
	}
}
