package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenghermawan/clandestineproject/internal/console/api"
	"github.com/agenghermawan/clandestineproject/internal/console/settings"
	"github.com/agenghermawan/clandestineproject/internal/credentials"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	server     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "clandestinectl",
		Short:         "Administer a clandestine gateway from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.server, "server", "", "gateway URL, overrides the saved one")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newUsersCmd(opts),
		newSearchCmd(opts),
	)
	return root
}

func (o *options) settingsPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return settings.DefaultPath()
}

func (o *options) load() (settings.Settings, string, error) {
	path, err := o.settingsPath()
	if err != nil {
		return settings.Settings{}, "", err
	}
	s, err := settings.Load(path)
	if err != nil {
		return settings.Settings{}, "", err
	}
	if o.server != "" {
		s.Server = strings.TrimRight(o.server, "/")
	}
	return s, path, nil
}

// client builds an API client for the saved session.
func (o *options) client() (*api.Client, settings.Settings, error) {
	s, _, err := o.load()
	if err != nil {
		return nil, s, err
	}
	token, err := credentials.GetToken(s.Server)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, s, fmt.Errorf("not logged in to %s; run `clandestinectl login` first", s.Server)
	}
	if err != nil {
		return nil, s, err
	}
	return api.New(s.Server, token, api.WithCookieName(s.CookieName)), s, nil
}
