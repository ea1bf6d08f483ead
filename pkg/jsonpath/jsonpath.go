// Package jsonpath extracts values from API payloads with a subset of
// JSONPath: $, dotted names, [n] indexes, ['name'] keys and the [*] wildcard.
package jsonpath

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Compile translates a JSONPath expression into gjson path syntax.
func Compile(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", errors.New("empty JSONPath expression")
	}
	if strings.Contains(expr, "..") {
		return "", errors.Errorf("recursive descent is not supported: %s", expr)
	}

	rest := strings.TrimPrefix(expr, "$")
	var parts []string
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			if end == 0 {
				return "", errors.Errorf("empty name in %s", expr)
			}
			parts = append(parts, escape(rest[:end]))
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", errors.Errorf("unclosed bracket in %s", expr)
			}
			inner := strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
			switch {
			case inner == "*":
				parts = append(parts, "#")
			case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
				parts = append(parts, escape(inner[1:len(inner)-1]))
			case isIndex(inner):
				parts = append(parts, inner)
			default:
				return "", errors.Errorf("unsupported selector [%s] in %s", inner, expr)
			}
		default:
			// bare leading name, as in "data.id"
			if len(parts) > 0 {
				return "", errors.Errorf("unexpected %q in %s", rest[0], expr)
			}
			rest = "." + rest
		}
	}

	if len(parts) == 0 {
		return "@this", nil
	}
	return strings.Join(parts, "."), nil
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func escape(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "#", `\#`, "|", `\|`)
	return r.Replace(name)
}

// Extract returns the value at expr decoded into Go values: maps, slices,
// float64, string, bool or nil.
func Extract(doc []byte, expr string) (interface{}, error) {
	result, err := lookup(doc, expr)
	if err != nil {
		return nil, err
	}
	return result.Value(), nil
}

// ExtractString returns the value at expr as text. Objects and arrays are
// returned as raw JSON and null as "null".
func ExtractString(doc []byte, expr string) (string, error) {
	result, err := lookup(doc, expr)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

func lookup(doc []byte, expr string) (gjson.Result, error) {
	if len(doc) == 0 {
		return gjson.Result{}, errors.New("empty JSON document")
	}
	if !gjson.ValidBytes(doc) {
		return gjson.Result{}, errors.New("invalid JSON document")
	}
	path, err := Compile(expr)
	if err != nil {
		return gjson.Result{}, err
	}
	result := gjson.GetBytes(doc, path)
	if !result.Exists() {
		return gjson.Result{}, errors.Errorf("path not found: %s", expr)
	}
	return result, nil
}

// ExtractAll extracts every named expression. Values that were found are
// returned even when others fail; the error lists the failures by name.
func ExtractAll(doc []byte, exprs map[string]string) (map[string]interface{}, error) {
	if len(exprs) == 0 {
		return nil, errors.New("no JSONPath expressions provided")
	}

	names := make([]string, 0, len(exprs))
	for name := range exprs {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]interface{}, len(exprs))
	var failures []string
	for _, name := range names {
		value, err := Extract(doc, exprs[name])
		if err != nil {
			failures = append(failures, name+": "+err.Error())
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, errors.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}
