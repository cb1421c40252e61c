package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tilth/pkg/adapters/lifecycle"
	"github.com/aretw0/tilth/pkg/core"
)

func newWatchCmd(d *deps) *cobra.Command {
	var (
		collection string
		only       []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print entry changes as they happen",
		Long:  `Watch the entries root and print one line per created, modified or deleted entry until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []lifecycle.Option{lifecycle.WithCollection(collection)}
			if len(only) > 0 {
				kinds, err := parseKinds(only)
				if err != nil {
					return err
				}
				opts = append(opts, lifecycle.WithKinds(kinds...))
			}

			store, err := d.open(true)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			changes, err := store.Watch(ctx)
			if err != nil {
				return err
			}
			source := lifecycle.NewSource(changes, opts...)
			if err := source.Start(ctx); err != nil {
				return err
			}

			d.logger.Info("watching for changes", "root", store.Root, "collection", collection)
			for e := range source.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Only report changes at or below this entry id")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Only report these changes: created, modified, deleted")
	return cmd
}

func parseKinds(names []string) ([]core.ChangeType, error) {
	kinds := make([]core.ChangeType, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "created", "create":
			kinds = append(kinds, core.ChangeCreate)
		case "modified", "modify":
			kinds = append(kinds, core.ChangeModify)
		case "deleted", "delete":
			kinds = append(kinds, core.ChangeDelete)
		default:
			return nil, fmt.Errorf("unknown change kind %q", name)
		}
	}
	return kinds, nil
}
