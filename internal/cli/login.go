package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/yampi-go/api"
)

func newLoginCmd(o *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the access token to the profile",
		Long: `Sign in with an e-mail and password and save the returned token to the
selected profile. The password may also come from YAMPI_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			if email == "" {
				email = s.profile.Email
			}
			if password == "" {
				password = s.profile.Password
			}
			if email == "" || password == "" {
				return errors.New("login requires --email and --password (or YAMPI_EMAIL and YAMPI_PASSWORD)")
			}

			req, err := s.newRequest()
			if err != nil {
				return err
			}
			if err := req.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			stored := s.config.Profile(s.profileName)
			stored.Email = email
			switch req.AuthTokenType() {
			case api.TokenBearer:
				stored.JWT = req.AuthToken()
			case api.TokenUser:
				stored.Token = req.AuthToken()
			}
			if err := s.config.Save(); err != nil {
				return err
			}

			fmt.Fprint(s.out, s.formatter.FormatValues(
				"Logged in as "+email,
				map[string]interface{}{
					"profile":   s.profileName,
					"tokenType": string(req.AuthTokenType()),
					"config":    s.config.Path(),
				},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved tokens from the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd)
			if err != nil {
				return err
			}
			stored := s.config.Profile(s.profileName)
			stored.Token = ""
			stored.JWT = ""
			if err := s.config.Save(); err != nil {
				return errors.Wrap(err, "error deleting tokens")
			}
			fmt.Fprintln(s.out, "Logout was successful.")
			return nil
		},
	}
}
