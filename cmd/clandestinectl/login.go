package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenghermawan/clandestineproject/internal/console/forms"
	"github.com/agenghermawan/clandestineproject/internal/console/settings"
	"github.com/agenghermawan/clandestineproject/internal/credentials"
)

func newLoginCmd(opts *options) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token for a gateway",
		Long: `Stores the session token (the value of the site's token cookie) in the
system keyring and remembers the gateway URL in the settings file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, err := opts.load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(token) == "" {
				if err := forms.Run(forms.NewTokenForm(s.Server, &token)); err != nil {
					return err
				}
			}
			if err := credentials.SetToken(s.Server, token); err != nil {
				return err
			}
			if err := settings.Save(path, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", s.Server)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token (prompted for when omitted)")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := opts.load()
			if err != nil {
				return err
			}
			err = credentials.DeleteToken(s.Server)
			if errors.Is(err, credentials.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "Not logged in to %s\n", s.Server)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", s.Server)
			return nil
		},
	}
}
