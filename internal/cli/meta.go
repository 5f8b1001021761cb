package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/store"
)

// MetaOptions holds flags shared by the meta subcommands.
type MetaOptions struct {
	*RootOptions
	Database string
}

// MetaListEntry is one row of meta list output.
type MetaListEntry struct {
	ID        string `json:"id"`
	Algorithm string `json:"algorithm"`
	Seq       int64  `json:"seq"`
}

// NewMetaCommand creates the meta command group.
func NewMetaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Manage the meta store",
		Long: `Import and list sender metas in the SQLite meta store.

The database defaults to the config's database setting.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	cmd.AddCommand(&cobra.Command{
		Use:   "import <id> <meta.json>",
		Short: "Validate and store a meta",
		Example: `  dwitter meta import --db ./metas.db moky@3a1f... moky.meta.json
  dwitter meta import --db ./metas.db moky@3a1f... moky.meta.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaImport(opts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List stored metas in write order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaList(opts, cmd)
		},
	})

	return cmd
}

func (o *MetaOptions) openStore() (*store.Store, error) {
	path := o.Database
	if path == "" {
		cfg, err := o.loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Database
	}
	return store.Open(path)
}

func runMetaImport(opts *MetaOptions, rawID, metaPath string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	id, err := identity.ParseID(rawID)
	if err != nil {
		return out.Fail(ExitCommandError, CodeMeta, "invalid identifier", err)
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return out.Fail(ExitCommandError, CodeMeta, "failed to read meta", err)
	}
	meta, err := identity.ParseMeta(data)
	if err != nil {
		return out.Fail(ExitCommandError, CodeMeta, "invalid meta", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to open database", err)
	}
	defer st.Close()

	fb := identity.NewFacebook(identity.WithMetaStore(st))
	if err := fb.SaveMeta(context.Background(), id, meta); err != nil {
		return out.Fail(ExitCommandError, CodeMeta, "failed to import meta", err)
	}

	out.VerboseLog("imported %s from %s", id, metaPath)
	return out.Success(map[string]string{"id": id.String()}, "imported "+id.String())
}

func runMetaList(opts *MetaOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	st, err := opts.openStore()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.ListMetas(context.Background())
	if err != nil {
		return out.Fail(ExitCommandError, CodeMeta, "failed to list metas", err)
	}

	entries := make([]MetaListEntry, len(records))
	lines := make([]string, len(records))
	for i, r := range records {
		entries[i] = MetaListEntry{ID: r.ID.String(), Algorithm: r.Meta.Key.Algorithm, Seq: r.Seq}
		lines[i] = fmt.Sprintf("%4d  %s", r.Seq, r.ID)
	}
	if len(lines) == 0 {
		lines = []string{"No metas."}
	}
	return out.Success(entries, lines...)
}
