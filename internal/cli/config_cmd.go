package cli

import (
	"fmt"
	"os"
	"strings"

	"crewmates/internal/config"
	"crewmates/internal/format"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialise the config file",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigPathCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func configPath(app *App) (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{
				"path":    path,
				"backend": cfg.Store.ResolvedBackend(),
			}
			if err := cfg.Validate(); err != nil {
				meta["invalid"] = err.Error()
			}
			return writeOut(cmd, app, format.Envelope{Data: cfg.Redacted(), Meta: meta})
		},
	}
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, statErr := os.Stat(path)
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"path":   path,
				"exists": statErr == nil,
			}})
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: strings.TrimSpace(`
Writes defaults, merged with any CREWMATES_* environment variables and flags,
to the config file. The extension picks TOML (default) or YAML.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config file already exists: %s (pass --force to overwrite)", path))
			}
			// Start from defaults, not the file we may be replacing.
			cfg := config.Default()
			if err := cfg.ApplyEnv(os.Getenv); err != nil {
				return writeErr(cmd, err)
			}
			applyFlagOverrides(cmd.Flags(), app, &cfg)
			if err := config.Save(path, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": path}})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
