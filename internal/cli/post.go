package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/api"
)

// bodyOptions are the payload flags of post, put and patch.
type bodyOptions struct {
	data  []string
	json  string
	query []string
}

func (b *bodyOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&b.data, "data", "d", nil, "Body field as key=value, or key:=json for raw JSON values (repeatable)")
	flags.StringVarP(&b.json, "json", "j", "", "Body as a JSON object, or @file to read it from a file; --data fields are merged on top")
	flags.StringArrayVarP(&b.query, "query", "q", nil, "Query parameter as key=value (repeatable)")
}

// body builds the JSON body from --json and then --data.
func (b *bodyOptions) body() (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if b.json != "" {
		doc := []byte(b.json)
		if path := strings.TrimPrefix(b.json, "@"); path != b.json {
			var err error
			if doc, err = os.ReadFile(path); err != nil {
				return nil, errors.Wrapf(err, "error reading --json file %s", path)
			}
		}
		if err := json.Unmarshal(doc, &body); err != nil {
			return nil, errors.Wrap(err, "invalid --json value, expected a JSON object")
		}
		if body == nil {
			body = map[string]interface{}{}
		}
	}

	for _, field := range b.data {
		if key, raw, ok := strings.Cut(field, ":="); ok && !strings.Contains(key, "=") {
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, errors.Errorf("invalid --data value %q, expected key:=json", field)
			}
			var value interface{}
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				return nil, errors.Wrapf(err, "invalid JSON in --data value %q", field)
			}
			body[key] = value
			continue
		}
		pairs, err := parsePairs("data", []string{field})
		if err != nil {
			return nil, err
		}
		for key, value := range pairs {
			body[key] = value
		}
	}
	return body, nil
}

func (b *bodyOptions) apply(req *api.Request) error {
	body, err := b.body()
	if err != nil {
		return err
	}
	query, err := parsePairs("query", b.query)
	if err != nil {
		return err
	}
	for key, value := range query {
		req.SetQuery(key, value)
	}
	req.AddBody(body)
	return nil
}

// newBodyCmd builds post, put and patch, which differ only in their verb.
func newBodyCmd(o *rootOptions, verb, short, example string, send func(*api.Request) sendFunc) *cobra.Command {
	var (
		b bodyOptions
		r responseOptions
	)
	cmd := &cobra.Command{
		Use:     strings.ToLower(verb) + " ROUTE...",
		Short:   short,
		Example: example,
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
			if err := b.apply(req.Request); err != nil {
				return err
			}
			return s.call(cmd, req.Request, verb, send(req.Request), r)
		},
	}
	b.addFlags(cmd)
	r.addFlags(cmd)
	return cmd
}

func newPostCmd(o *rootOptions) *cobra.Command {
	return newBodyCmd(o, api.MethodPost, "Create a resource",
		`  yampi post customers -d name=Ana -d email=ana@example.com
  yampi post catalog products -j '{"name":"Shirt","active":true}'`,
		func(r *api.Request) sendFunc { return r.Post })
}

func newPutCmd(o *rootOptions) *cobra.Command {
	return newBodyCmd(o, api.MethodPut, "Replace a resource",
		`  yampi put catalog products 42 -j @product.json`,
		func(r *api.Request) sendFunc { return r.Put })
}

func newPatchCmd(o *rootOptions) *cobra.Command {
	return newBodyCmd(o, api.MethodPatch, "Update fields of a resource",
		`  yampi patch orders 1042 -d status=paid -d notify:=true`,
		func(r *api.Request) sendFunc { return r.Patch })
}
