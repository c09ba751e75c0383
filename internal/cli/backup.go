package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"crewmates/internal/format"
	"crewmates/internal/store"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every crewmate as JSON lines (stdout by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				if strings.TrimSpace(out) == "" {
					_, err := store.Backup(ctx, st, cmd.OutOrStdout())
					return err
				}
				f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				n, err := store.Backup(ctx, st, f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": out, "count": n}})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "restore <file|->",
		Short: "Insert crewmates from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				in = f
			}
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				n, err := store.Restore(ctx, st, in, replace)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, format.Envelope{Data: map[string]any{"restored": n}})
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete existing crewmates first")
	return cmd
}
