package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/api"
	"github.com/wesleyorama2/yampi-go/pkg/jsonpath"
	"github.com/wesleyorama2/yampi-go/pkg/jsonschema"
)

// sendFunc is one of the verb methods of api.Request.
type sendFunc func(ctx context.Context, body map[string]interface{}) (*api.Response, error)

// responseOptions are the flags shared by every verb that post-process the
// response body.
type responseOptions struct {
	extract []string
	raw     string
	schema  string
}

func (r *responseOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&r.extract, "extract", nil, "Print only these values, as name=$.json.path (repeatable)")
	cmd.Flags().StringVar(&r.raw, "raw", "", "Print only the bare value at this $.json.path")
	cmd.Flags().StringVar(&r.schema, "schema", "", "Validate the response body against this JSON Schema file")
}

// call prints the prepared request when verbose, sends it and renders the
// response. method is the verb send puts on the wire.
func (s *session) call(cmd *cobra.Command, req *api.Request, method string, send sendFunc, r responseOptions) error {
	if err := req.Err(); err != nil {
		return err
	}

	if s.verbose {
		req.SetMethod(method)
		fmt.Fprint(s.errOut, s.formatter.FormatRequest(req))
	}

	resp, err := send(cmd.Context(), nil)
	if err != nil {
		return err
	}

	if r.schema != "" {
		schema, err := jsonschema.Load(r.schema)
		if err != nil {
			return err
		}
		if err := schema.Validate(resp.Raw()); err != nil {
			return err
		}
	}

	if r.raw != "" {
		value, err := jsonpath.ExtractString(resp.Raw(), r.raw)
		if err != nil {
			return errors.Wrap(err, "error extracting value")
		}
		fmt.Fprintln(s.out, value)
		return nil
	}

	if len(r.extract) > 0 {
		exprs, err := parsePairs("extract", r.extract)
		if err != nil {
			return err
		}
		values, err := jsonpath.ExtractAll(resp.Raw(), exprs)
		if len(values) > 0 {
			fmt.Fprint(s.out, s.formatter.FormatValues("Extracted", values))
		}
		return errors.Wrap(err, "error extracting values")
	}

	fmt.Fprint(s.out, s.formatter.FormatResponse(resp))
	return nil
}
