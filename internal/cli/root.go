package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"crewmates/internal/config"
	"crewmates/internal/format"
	"crewmates/internal/store"
	"crewmates/internal/tui"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type App struct {
	ConfigPath string
	Backend    string
	URL        string
	DBPath     string
	Timeout    time.Duration
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg     config.Config
	log     *slog.Logger
	metrics *store.Metrics
	stop    func()
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "crewmates",
		Short:        "Crewmates CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  crewmates

  # Scriptable commands
  crewmates list --format table
  crewmates create --name Ada --speed 12 --color Blue
  crewmates update <id> --speed 14
  crewmates delete <id> --yes

  # Point at a Supabase project for one call
  SUPABASE_URL=https://xyz.supabase.co SUPABASE_KEY=... crewmates list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.stop != nil {
			app.stop()
			app.stop = nil
		}
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", envOr("CREWMATES_CONFIG", ""), "Config file (default: ~/.crewmates/config.toml; .yaml/.yml also accepted)")
	pf.StringVar(&app.Backend, "backend", "", "Store backend ("+strings.Join(config.Backends, "|")+")")
	pf.StringVar(&app.URL, "url", "", "Supabase project URL (overrides store.url)")
	pf.StringVar(&app.DBPath, "db", "", "Database file for the sqlite/bolt backends")
	pf.DurationVar(&app.Timeout, "timeout", 0, "Bound on each store call (0 keeps the configured value)")
	pf.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	pf.StringVar(&app.Format, "format", envOr("CREWMATES_FORMAT", format.JSON), "Output format ("+strings.Join(format.Formats, "|")+")")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newCreateCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newColorsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newRestoreCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig layers defaults, the config file, CREWMATES_* env vars and
// finally any flag the user actually set.
func loadConfig(cmd *cobra.Command, app *App) (config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}
	applyFlagOverrides(cmd.Flags(), app, &cfg)
	app.cfg = cfg
	return cfg, nil
}

func applyFlagOverrides(fs *pflag.FlagSet, app *App, cfg *config.Config) {
	if fs.Changed("backend") {
		cfg.Store.Backend = app.Backend
	}
	if fs.Changed("url") {
		cfg.Store.URL = app.URL
	}
	if fs.Changed("db") {
		cfg.Store.Path = app.DBPath
	}
	if fs.Changed("timeout") {
		cfg.Store.Timeout = config.Duration(app.Timeout)
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = app.LogLevel
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// startMetrics serves /metrics when metrics.addr is set and returns the
// collectors to hang off the store.
func startMetrics(app *App) (*store.Metrics, error) {
	addr := strings.TrimSpace(app.cfg.Metrics.Addr)
	if addr == "" {
		return nil, nil
	}
	m, err := store.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	app.log.Info("serving metrics", "addr", addr)
	prev := app.stop
	app.stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		if prev != nil {
			prev()
		}
	}
	return m, nil
}

// openStore prepares config, logging and metrics for a scripted command and
// opens the configured backend.
func openStore(cmd *cobra.Command, app *App) (store.Store, error) {
	cfg, err := loadConfig(cmd, app)
	if err != nil {
		return nil, err
	}
	if app.log, err = newLogger(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if app.metrics, err = startMetrics(app); err != nil {
		return nil, err
	}
	ctx, cancel := app.storeContext(cmd.Context())
	defer cancel()
	return store.Open(ctx, cfg.Store, app.log, app.metrics)
}

// storeContext bounds one store call by store.timeout.
func (app *App) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d := app.cfg.Store.Timeout.Std(); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := loadConfig(cmd, app)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to log.file or nowhere.
	logOut := io.Discard
	if path := strings.TrimSpace(cfg.Log.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if app.log, err = newLogger(logOut, cfg.Log.Level); err != nil {
		return err
	}
	if app.metrics, err = startMetrics(app); err != nil {
		return err
	}

	// A store that cannot be built leaves the TUI running in its
	// "not initialized" state rather than refusing to start.
	var st store.Store
	if err := cfg.Validate(); err != nil {
		app.log.Error("invalid store configuration", "err", err)
	} else {
		ctx, cancel := app.storeContext(cmd.Context())
		st, err = store.Open(ctx, cfg.Store, app.log, app.metrics)
		cancel()
		if err != nil {
			app.log.Error("open store", "backend", cfg.Store.ResolvedBackend(), "err", err)
			st = nil
		}
	}
	if st != nil {
		defer st.Close()
	}

	return tui.Run(tui.Options{
		Store:   st,
		Timeout: cfg.Store.Timeout.Std(),
		Logger:  app.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
