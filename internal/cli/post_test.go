package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyCommands(t *testing.T) {
	tests := []struct {
		command string
		method  string
	}{
		{"post", http.MethodPost},
		{"put", http.MethodPut},
		{"patch", http.MethodPatch},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			server, captured := newTestServer(t, http.StatusOK, `{"data":{"id":9}}`)

			_, _, err := runCLI(t, tempConfig(t, ""), "--url", server.URL, "-m", "store",
				tt.command, "catalog", "products",
				"-j", `{"name":"Shirt","price":10}`,
				"-d", "name=Polo",
				"-d", "active:=true",
				"-q", "skipCache=true",
			)
			require.NoError(t, err)

			assert.Equal(t, tt.method, captured.Method)
			assert.Equal(t, "/v2/store/catalog/products", captured.Path)
			assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
			assert.Equal(t, map[string]interface{}{
				"name":   "Polo",
				"price":  float64(10),
				"active": true,
			}, captured.Body)
			assert.Equal(t, []string{"true"}, captured.Query["skipCache"])
		})
	}
}

func TestPostCommandEmptyBody(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `{}`)

	_, _, err := runCLI(t, tempConfig(t, ""), "--url", server.URL, "post", "orders", "1", "invoice")
	require.NoError(t, err)
	assert.Equal(t, "/v2/orders/1/invoice", captured.Path)
	assert.Equal(t, map[string]interface{}{}, captured.Body)
}

func TestBodyOptions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"from":"file"}`), 0600))

	tests := []struct {
		name     string
		opts     bodyOptions
		expected map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "empty",
			opts:     bodyOptions{},
			expected: map[string]interface{}{},
		},
		{
			name:     "string fields",
			opts:     bodyOptions{data: []string{"a=1", "b=x=y"}},
			expected: map[string]interface{}{"a": "1", "b": "x=y"},
		},
		{
			name: "raw json fields",
			opts: bodyOptions{data: []string{"n:=2", "tags:=[\"a\"]", "obj:={\"k\":null}"}},
			expected: map[string]interface{}{
				"n":    float64(2),
				"tags": []interface{}{"a"},
				"obj":  map[string]interface{}{"k": nil},
			},
		},
		{
			name:     "json null",
			opts:     bodyOptions{json: "null", data: []string{"a=1"}},
			expected: map[string]interface{}{"a": "1"},
		},
		{
			name:     "json file",
			opts:     bodyOptions{json: "@" + file},
			expected: map[string]interface{}{"from": "file"},
		},
		{name: "json array", opts: bodyOptions{json: "[1]"}, wantErr: true},
		{name: "missing file", opts: bodyOptions{json: "@" + file + ".missing"}, wantErr: true},
		{name: "bad raw json", opts: bodyOptions{data: []string{"n:=nope"}}, wantErr: true},
		{name: "missing key", opts: bodyOptions{data: []string{":=1"}}, wantErr: true},
		{name: "no separator", opts: bodyOptions{data: []string{"flag"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.opts.body()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, body)
		})
	}
}
