package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/api"
	"github.com/wesleyorama2/yampi-go/internal/config"
	"github.com/wesleyorama2/yampi-go/internal/output"
)

var version = "0.1.0"

// rootOptions holds the global flags. Flags that are set win over the
// profile file and the YAMPI_* environment.
type rootOptions struct {
	configPath  string
	profile     string
	environment string
	url         string
	merchant    string
	token       string
	jwt         string
	timeout     string
	forceAlias  bool
	forgetAlias bool
	insecure    bool
	verbose     bool
	noColor     bool
	output      string
}

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "yampi",
		Short:   "A terminal client for the Yampi REST API",
		Version: version,
		Long: `yampi calls the Yampi e-commerce REST API from the terminal.

Routes are given as segments, the merchant alias is added for you, and
responses can be printed as text, JSON, YAML or a table:

  yampi --merchant my-store get catalog products --include skus --limit 10
  yampi login --email me@example.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Config file (default ~/.yampi/config.yaml)")
	flags.StringVarP(&o.profile, "profile", "p", "", "Profile to use from the config file")
	flags.StringVar(&o.environment, "env", "", "API environment: production, sandbox or local")
	flags.StringVar(&o.url, "url", "", "API base URL, overrides --env")
	flags.StringVarP(&o.merchant, "merchant", "m", "", "Merchant alias")
	flags.StringVar(&o.token, "token", "", "User token")
	flags.StringVar(&o.jwt, "jwt", "", "JWT bearer token")
	flags.StringVarP(&o.timeout, "timeout", "t", "", "Request timeout (default 30s)")
	flags.BoolVar(&o.forceAlias, "force-alias", false, "Always add the merchant alias to the route")
	flags.BoolVar(&o.forgetAlias, "forget-alias", false, "Never add the merchant alias to the route")
	flags.BoolVar(&o.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Print the outgoing request, timing and headers")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	flags.StringVarP(&o.output, "output", "o", string(output.FormatText), "Output format: text, json, yaml or table")

	cmd.AddCommand(
		newGetCmd(o),
		newDeleteCmd(o),
		newPostCmd(o),
		newPutCmd(o),
		newPatchCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newConfigCmd(o),
	)

	return cmd
}

// Execute builds the command tree and runs it against os.Args. Errors are
// printed through the selected formatter.
func Execute() error {
	o := &rootOptions{}
	return run(newRootCmd(o), o)
}

func run(cmd *cobra.Command, o *rootOptions) error {
	err := cmd.Execute()
	if err != nil {
		o.printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func (o *rootOptions) printError(w io.Writer, err error) {
	format, ferr := output.ParseFormat(o.output)
	if ferr != nil {
		format = output.FormatText
	}
	formatter := output.GetFormatter(format, o.verbose, output.NoColorFor(w, o.noColor))
	fmt.Fprint(w, formatter.FormatError(err))
}

// session is everything a command needs once flags are parsed.
type session struct {
	config      *config.Config
	profileName string
	profile     *config.Profile
	formatter   output.FormatProvider
	noColor     bool
	verbose     bool
	out         io.Writer
	errOut      io.Writer
	insecure    bool
}

func (o *rootOptions) session(cmd *cobra.Command) (*session, error) {
	format, err := output.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}

	path := o.configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	name, profile, err := cfg.Resolve(o.profile)
	if err != nil {
		return nil, err
	}
	o.applyFlags(profile)
	if errs := config.ValidateProfile(name, profile); len(errs) > 0 {
		return nil, errs
	}

	out := cmd.OutOrStdout()
	noColor := output.NoColorFor(out, o.noColor)
	if missing := cfg.MissingCurrent(); missing != "" && o.profile == "" {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "%s current profile %s not found in %s, using %s\n",
			output.WarningIcon(output.NoColorFor(errOut, o.noColor)), missing, cfg.Path(), name)
	}
	return &session{
		config:      cfg,
		profileName: name,
		profile:     profile,
		formatter:   output.GetFormatter(format, o.verbose, noColor),
		noColor:     noColor,
		verbose:     o.verbose,
		out:         out,
		errOut:      cmd.ErrOrStderr(),
		insecure:    o.insecure,
	}, nil
}

func (o *rootOptions) applyFlags(p *config.Profile) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if o.url == "" && o.environment != "" {
		// an explicit environment replaces a URL coming from the profile
		p.URL = ""
	}
	override(&p.Environment, o.environment)
	override(&p.URL, o.url)
	override(&p.Merchant, o.merchant)
	override(&p.Token, o.token)
	override(&p.JWT, o.jwt)
	override(&p.Timeout, o.timeout)
	if o.forceAlias {
		p.ForceAlias = true
	}
	if o.forgetAlias {
		p.ForgetAlias = true
	}
}

// newRequest builds an authenticated request from the resolved profile.
func (s *session) newRequest() (*api.AuthRequest, error) {
	baseURL, err := s.profile.BaseURL()
	if err != nil {
		return nil, err
	}
	timeout, err := s.profile.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []api.Option{api.WithTimeout(timeout)}
	if s.profile.Version != "" {
		opts = append(opts, api.WithVersion(s.profile.Version))
	}
	if s.insecure {
		opts = append(opts, api.WithInsecureSkipVerify())
	}

	req := api.NewAuth(baseURL, opts...)
	if s.profile.Merchant != "" {
		req.SetMerchant(s.profile.Merchant)
	}
	if s.profile.ForceAlias {
		req.ForceAlias()
	}
	if s.profile.ForgetAlias {
		req.ForgetAlias()
	}
	for key, value := range s.profile.Headers {
		req.AddHeader(key, value)
	}
	if s.profile.Token != "" {
		req.SetUserToken(s.profile.Token)
	}
	if s.profile.JWT != "" {
		req.SetJwt(s.profile.JWT)
	}
	return req, nil
}

// route appends the route segments given as arguments.
func route(req *api.Request, segments []string) error {
	if len(segments) == 0 {
		return errors.New("a route is required, e.g. catalog products")
	}
	args := make([]interface{}, 0, len(segments)-1)
	for _, s := range segments[1:] {
		args = append(args, strings.Trim(s, "/"))
	}
	req.Path(strings.Trim(segments[0], "/"), args...)
	return nil
}

// parsePairs splits key=value flag values.
func parsePairs(flag string, values []string) (map[string]string, error) {
	pairs := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --%s value %q, expected key=value", flag, v)
		}
		pairs[key] = value
	}
	return pairs, nil
}
