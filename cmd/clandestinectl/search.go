package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenghermawan/clandestineproject/internal/console/api"
)

func newSearchCmd(opts *options) *cobra.Command {
	var q api.SearchQuery
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search leaked records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.client()
			if err != nil {
				return err
			}
			q.Q = args[0]

			raw, err := client.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, raw, "", "  "); err != nil {
				return fmt.Errorf("format results: %w", err)
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&q.Type, "type", "", "record type to search (e.g. email, domain)")
	cmd.Flags().IntVar(&q.Page, "page", 1, "result page")
	cmd.Flags().IntVar(&q.Size, "size", 10, "results per page")
	return cmd
}
