package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/serializer/frontmatter"
	jsoncodec "github.com/aretw0/tilth/pkg/serializer/json"
)

// payload collects the --data, --set and --content flags of a write
// command. Later sources win: --data, then --set, then --content.
type payload struct {
	object  string
	sets    []string
	content string
}

func (p *payload) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.object, "data", "", `Entry fields as a JSON object, "-" reads it from stdin`)
	cmd.Flags().StringArrayVar(&p.sets, "set", nil, "Field assignment key=value; dotted keys nest (repeatable)")
	cmd.Flags().StringVar(&p.content, "content", "", `Entry body, "-" reads it from stdin`)
}

func (p *payload) data(cmd *cobra.Command) (core.Data, error) {
	if p.object == "-" && p.content == "-" {
		return nil, fmt.Errorf("--data and --content cannot both read stdin")
	}

	data := core.Data{}
	if cmd.Flags().Changed("data") {
		raw, err := p.read(cmd, p.object)
		if err != nil {
			return nil, err
		}
		if data, err = jsoncodec.New(nil).Decode(raw, false); err != nil {
			return nil, fmt.Errorf("--data: %w", err)
		}
	}

	if err := applySets(data, p.sets); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("content") {
		content, err := p.read(cmd, p.content)
		if err != nil {
			return nil, err
		}
		data[core.ContentKey] = content
	}
	return data, nil
}

func (p *payload) read(cmd *cobra.Command, value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(raw), nil
}

// parseSets turns key=value pairs into entry data. Values are read as
// YAML scalars or flow sequences ("3", "true", "[a, b]"); anything else
// stays a string.
func parseSets(sets []string) (core.Data, error) {
	data := core.Data{}
	if err := applySets(data, sets); err != nil {
		return nil, err
	}
	return data, nil
}

func applySets(data core.Data, sets []string) error {
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q, want key=value", s)
		}
		core.Assign(data, key, parseValue(raw))
	}
	return nil
}

func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case nil, map[string]any:
		return raw
	}
	return v
}

func describe(res core.Result) string {
	if res.Reason == "" {
		return res.Status.String()
	}
	return fmt.Sprintf("%s: %s", res.Status, res.Reason)
}

func newCreateCmd(d *deps) *cobra.Command {
	var p payload

	cmd := &cobra.Command{
		Use:     "create <id>",
		Short:   "Create an entry",
		Example: `  tilth create blog/hello --set title="Hello" --set tags="[go, notes]" --content "First post."`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := p.data(cmd)
			if err != nil {
				return err
			}
			store, err := d.open(false)
			if err != nil {
				return err
			}

			res, err := store.Create(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("cannot create %s: %s", args[0], describe(res))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' created.\n", args[0])
			return nil
		},
	}

	p.bind(cmd)
	return cmd
}

func newUpdateCmd(d *deps) *cobra.Command {
	var (
		p      payload
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an entry",
		Long: `Merge fields into an existing entry. Top-level keys replace what is
stored; lists and maps are not merged. With --dry-run the resulting change
is printed as a line diff and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := p.data(cmd)
			if err != nil {
				return err
			}
			store, err := d.open(dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				current, err := store.FetchSingle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(current) == 0 {
					return fmt.Errorf("cannot update %s: %s", args[0], core.StatusNotFound)
				}

				codec := frontmatter.New(nil, nil)
				before, err := codec.Encode(current)
				if err != nil {
					return err
				}
				after, err := codec.Encode(current.Merge(patch))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), lineDiff(before, after))
				return nil
			}

			res, err := store.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("cannot update %s: %s", args[0], describe(res))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' updated.\n", args[0])
			return nil
		},
	}

	p.bind(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the change as a diff without writing")
	return cmd
}
