package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"crewmates/internal/format"
	"crewmates/internal/model"
	"crewmates/internal/store"

	"github.com/spf13/cobra"
)

// withStore opens the configured store, runs fn under the store timeout and
// closes the store again.
func withStore(cmd *cobra.Command, app *App, fn func(ctx context.Context, st store.Store) error) error {
	st, err := openStore(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	ctx, cancel := app.storeContext(cmd.Context())
	defer cancel()
	if err := fn(ctx, st); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func findCrewmate(ctx context.Context, st store.Store, id string) (model.Crewmate, error) {
	recs, err := st.Select(ctx)
	if err != nil {
		return model.Crewmate{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Crewmate{}, errNotFound("crewmate", id)
}

func mapNotFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errNotFound("crewmate", id)
	}
	return err
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List crewmates, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				recs, err := st.Select(ctx)
				if err != nil {
					return err
				}
				if recs == nil {
					recs = []model.Crewmate{}
				}
				return writeOut(cmd, app, format.Envelope{
					Data: recs,
					Meta: map[string]any{"count": len(recs)},
				})
			})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one crewmate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				rec, err := findCrewmate(ctx, st, id)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, format.Envelope{Data: rec})
			})
		},
	}
}

func newCreateCmd(app *App) *cobra.Command {
	var in model.Input
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a crewmate",
		Example: strings.TrimSpace(`
  crewmates create --name Ada --speed 12 --color Blue
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := in.Parse()
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				rec, err := st.Insert(ctx, fields.Stamped(time.Now()))
				if err != nil {
					return err
				}
				return writeOut(cmd, app, format.Envelope{Data: rec})
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Crewmate name (required)")
	cmd.Flags().StringVar(&in.Speed, "speed", "", "Speed in mph (required)")
	cmd.Flags().StringVar(&in.Color, "color", "", "Color, one of the palette (see: crewmates colors)")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var in model.Input
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a crewmate (only the flags given change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			fs := cmd.Flags()
			if !fs.Changed("name") && !fs.Changed("speed") && !fs.Changed("color") {
				return writeErr(cmd, errors.New("nothing to update: pass --name, --speed or --color"))
			}
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				cur, err := findCrewmate(ctx, st, id)
				if err != nil {
					return err
				}
				next := model.Input{
					Name:  cur.Name,
					Speed: model.FormatSpeed(cur.Speed),
					Color: string(cur.Color),
				}
				if fs.Changed("name") {
					next.Name = in.Name
				}
				if fs.Changed("speed") {
					next.Speed = in.Speed
				}
				if fs.Changed("color") {
					next.Color = in.Color
				}
				fields, err := next.Parse()
				if err != nil {
					return err
				}
				rec, err := st.Update(ctx, id, fields.Stamped(time.Now()))
				if err != nil {
					return mapNotFound(err, id)
				}
				return writeOut(cmd, app, format.Envelope{Data: rec})
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "New name")
	cmd.Flags().StringVar(&in.Speed, "speed", "", "New speed in mph")
	cmd.Flags().StringVar(&in.Color, "color", "", "New color")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a crewmate",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !yes {
				return writeErr(cmd, confirmRequiredError{action: "delete", id: id})
			}
			return withStore(cmd, app, func(ctx context.Context, st store.Store) error {
				if err := st.Delete(ctx, id); err != nil {
					return mapNotFound(err, id)
				}
				return writeOut(cmd, app, format.Envelope{Data: map[string]any{"deleted": id}})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func newColorsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List the color palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, format.Envelope{Data: model.Palette})
		},
	}
}
