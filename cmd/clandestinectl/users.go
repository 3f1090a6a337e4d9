package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/internal/console/forms"
	"github.com/agenghermawan/clandestineproject/internal/console/users"
)

func newUsersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse and manage users interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, s, err := opts.client()
			if err != nil {
				return err
			}
			return users.Run(cmd.Context(), client, s.PageSize)
		},
	}
	cmd.AddCommand(newUsersCreateCmd(opts))
	return cmd
}

func newUsersCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.client()
			if err != nil {
				return err
			}

			in := admin.UserInput{IsActive: true}
			if err := forms.Run(forms.NewUserForm(&in)); err != nil {
				return err
			}
			in = forms.Normalize(in)
			if err := in.Validate(); err != nil {
				return err
			}

			u, err := client.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			if u.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", in.Username, u.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", in.Username)
			return nil
		},
	}
}
