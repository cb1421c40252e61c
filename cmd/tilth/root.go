package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tilth"
)

// deps holds the global flags shared by every command.
type deps struct {
	root        string
	config      string
	verbose     bool
	noCache     bool
	cacheDir    string
	compression string

	logger *slog.Logger
}

func newRootCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tilth",
		Short: "A flat-file entry store for Markdown + front matter",
		Long: `tilth keeps structured content as a tree of directories.
Every directory holding an entry file is an entry, addressed by its path.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if d.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			d.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(d.logger)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&d.root, "root", "", "Entries root (default: nearest directory with a tilth settings file, or the working directory)")
	flags.StringVar(&d.config, "config", "", "Settings file (YAML or JSONC)")
	flags.BoolVarP(&d.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&d.noCache, "no-cache", false, "Disable the entry cache")
	flags.StringVar(&d.cacheDir, "cache-dir", "", "Use a disk cache in this directory")
	flags.StringVar(&d.compression, "compression", "", "Disk cache compression (none, lz4, zstd)")

	cmd.AddCommand(
		newFetchCmd(d),
		newHasCmd(d),
		newListCmd(d),
		newCreateCmd(d),
		newUpdateCmd(d),
		newDeleteCmd(d),
		newMoveCmd(d),
		newCopyCmd(d),
		newWatchCmd(d),
		newStatusCmd(d),
		newVersionCmd(),
	)
	return cmd
}

// open creates the store addressed by the global flags.
func (d *deps) open(readOnly bool) (*tilth.Store, error) {
	root := d.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
		if found, err := tilth.FindRoot(wd); err == nil {
			root = found
		}
	}

	config := d.config
	if config == "" {
		config = tilth.SettingsFile(root)
	}

	opts := []tilth.Option{
		tilth.WithLogger(d.logger),
		tilth.WithReadOnly(readOnly),
	}
	if config != "" {
		opts = append(opts, tilth.WithSettingsFile(config))
	}
	if d.noCache {
		opts = append(opts, tilth.WithCache("none"))
	}
	if d.cacheDir != "" {
		opts = append(opts, tilth.WithCacheDir(d.cacheDir))
	}
	if d.compression != "" {
		opts = append(opts, tilth.WithCompression(d.compression))
	}
	return tilth.New(root, opts...)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
