package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tilth"
	"github.com/aretw0/tilth/pkg/core"
)

func newDeleteCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.open(false)
			if err != nil {
				return err
			}
			res, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("cannot delete %s: %s", args[0], describe(res))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' deleted.\n", args[0])
			return nil
		},
	}
}

type relocateFunc func(ctx context.Context, id, newID string) (core.Result, error)

func newRelocateCmd(d *deps, use, short, verb string, pick func(*tilth.Store) relocateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id> <new-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.open(false)
			if err != nil {
				return err
			}
			res, err := pick(store)(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("cannot %s %s to %s: %s", use, args[0], args[1], describe(res))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' %s to '%s'.\n", args[0], verb, args[1])
			return nil
		},
	}
}

func newMoveCmd(d *deps) *cobra.Command {
	return newRelocateCmd(d, "move", "Move an entry and everything below it", "moved",
		func(s *tilth.Store) relocateFunc { return s.Move })
}

func newCopyCmd(d *deps) *cobra.Command {
	return newRelocateCmd(d, "copy", "Copy an entry and everything below it", "copied",
		func(s *tilth.Store) relocateFunc { return s.Copy })
}
