package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/filter"
)

type listItem struct {
	ID   string    `json:"id"`
	Data core.Data `json:"data"`
}

func newListCmd(d *deps) *cobra.Command {
	var (
		asJSON  bool
		where   []string
		orderBy []string
		opts    filter.Options
	)

	cmd := &cobra.Command{
		Use:   "list [id]",
		Short: "List the entries below an id",
		Long: `List every entry below the given id (the root by default).

Conditions are written as "field<op>value" with =, !=, <, <=, > or >=,
"field <op> value" with contains, in, nin or like, and "field exists" or
"!field" for presence tests.`,
		Example: `  tilth list blog --where "draft=false" --order-by -published_at --limit 10
  tilth list --match "blog/**" --where "tags contains go"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			opts.Where = nil
			for _, expr := range where {
				c, err := filter.Parse(expr)
				if err != nil {
					return err
				}
				opts.Where = append(opts.Where, c)
			}
			opts.OrderBy = nil
			for _, expr := range orderBy {
				o, err := filter.ParseOrder(expr)
				if err != nil {
					return err
				}
				opts.OrderBy = append(opts.OrderBy, o)
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			store, err := d.open(true)
			if err != nil {
				return err
			}
			entries, err := store.FetchCollection(cmd.Context(), id, nil)
			if err != nil {
				return err
			}
			items := filter.Select(entries, opts)

			out := cmd.OutOrStdout()
			if asJSON {
				list := make([]listItem, 0, len(items))
				for _, it := range items {
					list = append(list, listItem{ID: it.ID, Data: it.Data})
				}
				return writeJSON(out, list)
			}

			for _, it := range items {
				if title, ok := it.Data["title"].(string); ok && title != "" {
					fmt.Fprintf(out, "%s - %s\n", it.ID, title)
					continue
				}
				fmt.Fprintln(out, it.ID)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&asJSON, "json", false, "Output in JSON format")
	flags.StringArrayVar(&where, "where", nil, "Filter condition (repeatable)")
	flags.StringArrayVar(&orderBy, "order-by", nil, `Sort field, "-field" for descending (repeatable)`)
	flags.IntVar(&opts.Limit, "limit", 0, "Maximum number of entries")
	flags.IntVar(&opts.Offset, "offset", 0, "Number of entries to skip")
	flags.StringVar(&opts.Match, "match", "", "Glob matched against entry ids (e.g. blog/**)")
	return cmd
}
