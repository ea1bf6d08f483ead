package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/internal/output"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and select configuration profiles",
	}
	cmd.AddCommand(newConfigViewCmd(o), newConfigUseCmd(o))
	return cmd
}

func newConfigViewCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the resolved profile with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			baseURL, err := s.profile.BaseURL()
			if err != nil {
				return err
			}
			timeout, err := s.profile.TimeoutDuration()
			if err != nil {
				return err
			}

			p := s.profile.Masked()
			values := map[string]interface{}{
				"config":      s.config.Path(),
				"url":         baseURL,
				"environment": p.Environment,
				"version":     p.Version,
				"merchant":    p.Merchant,
				"token":       p.Token,
				"jwt":         p.JWT,
				"email":       p.Email,
				"timeout":     timeout.String(),
				"forceAlias":  p.ForceAlias,
				"forgetAlias": p.ForgetAlias,
			}
			if len(p.Headers) > 0 {
				headers := make(map[string]interface{}, len(p.Headers))
				for k, v := range p.Headers {
					headers[k] = v
				}
				values["headers"] = headers
			}
			fmt.Fprint(s.out, s.formatter.FormatValues("Profile "+s.profileName, values))
			return nil
		},
	}
}

func newConfigUseCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use PROFILE",
		Short: "Make PROFILE the default profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := s.config.Profiles[name]; !ok {
				return errors.Errorf("profile not found: %s", name)
			}
			s.config.Current = name
			if err := s.config.Save(); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s Switched to profile %s\n", output.SuccessIcon(s.noColor), name)
			return nil
		},
	}
}
