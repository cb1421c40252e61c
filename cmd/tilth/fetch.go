package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tilth/pkg/serializer/frontmatter"
	jsoncodec "github.com/aretw0/tilth/pkg/serializer/json"
)

func newFetchCmd(d *deps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Print an entry",
		Long:  `Fetch an entry by its ID. Prints the entry document by default, or a JSON object with --json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.open(true)
			if err != nil {
				return err
			}

			data, err := store.FetchSingle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("entry %q not found", args[0])
			}

			if asJSON {
				out, err := (&jsoncodec.Codec{Indent: "  "}).Encode(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			doc, err := frontmatter.New(nil, nil).Encode(data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newHasCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "has <id>",
		Short: "Report whether an entry exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.open(true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Has(cmd.Context(), args[0]))
			return nil
		},
	}
}

func newStatusCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the store configuration and counters as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.open(true)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"component": store.ComponentType(),
				"state":     store.State(),
			})
		},
	}
}
