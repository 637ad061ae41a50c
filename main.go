package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/soocke/hudscan/app"
	"github.com/soocke/hudscan/config"
	hsdebug "github.com/soocke/hudscan/debug"
	"github.com/soocke/hudscan/domain/capture"
	"github.com/soocke/hudscan/domain/templates"
)

var exampleUsage = strings.TrimSpace(`
  hudscan                          # wait for the scan keys, ESC to quit
  hudscan --once --log-format text
  hudscan scan screenshot.png --templates ./templates
  hudscan templates --config hudscan.toml
`)

// cliOptions holds flag values. Only flags the user set override the file.
type cliOptions struct {
	configPath     string
	once           bool
	debug          bool
	templateDir    string
	threshold      float64
	workers        int
	diagnosticsDir string
	logFormat      string
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "hudscan",
		Short:         "Identify the weapon icon shown in the game HUD",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts, stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.Debug {
				hsdebug.StartRuntimeLogger(ctx, 5*time.Second, logger)
			}

			c, err := app.BuildContainer(cfg, logger, app.Options{NoTrigger: opts.once})
			if err != nil {
				return err
			}
			defer c.Close()
			a := app.New(c, stdout)
			if opts.once {
				_, err := a.RunOnce(ctx)
				return err
			}
			c.WatchTemplates(ctx)
			return a.Run(ctx)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "hudscan.toml", "config file (.toml or .json)")
	f.BoolVar(&opts.debug, "debug", false, "verbose logging and runtime stats")
	f.StringVar(&opts.templateDir, "templates", "", "template directory")
	f.Float64Var(&opts.threshold, "threshold", 0, "minimum combined score for a match")
	f.IntVar(&opts.workers, "workers", 0, "templates evaluated concurrently (0 = sequential)")
	f.StringVar(&opts.diagnosticsDir, "diagnostics-dir", "", "directory for weaponhud.png and detection.png")
	f.StringVar(&opts.logFormat, "log-format", "json", "log format: json or text")
	root.Flags().BoolVar(&opts.once, "once", false, "run a single cycle immediately and exit")

	root.AddCommand(newScanCmd(opts, stdout, stderr), newTemplatesCmd(opts, stdout, stderr))
	return root
}

func newScanCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <screenshot>",
		Short: "Run one detection cycle against a saved screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts, stderr)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			session, err := capture.DecodeImageSession(f, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			c, err := app.BuildContainer(cfg, logger, app.Options{Session: session, NoTrigger: true})
			if err != nil {
				return err
			}
			defer c.Close()
			_, err = app.New(c, stdout).RunOnce(cmd.Context())
			return err
		},
	}
}

func newTemplatesCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List reference templates and whether they decode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts, stderr)
			if err != nil {
				return err
			}
			lib := templates.NewLibrary(cfg.TemplateDir, cfg.TemplateGlob, false, logger)
			paths, err := lib.Paths()
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintf(stdout, "no templates in %s\n", lib.Dir())
				return nil
			}
			for _, p := range paths {
				img, err := lib.Load(p)
				if err != nil {
					fmt.Fprintf(stdout, "%-32s error: %v\n", p, err)
					continue
				}
				b := img.Bounds()
				fmt.Fprintf(stdout, "%-32s %dx%d\n", p, b.Dx(), b.Dy())
			}
			return nil
		},
	}
}

// setup loads the config file, applies explicitly set flags and builds the
// logger.
func setup(cmd *cobra.Command, opts *cliOptions, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	applyFlags(cfg, opts, changed)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(stderr, level, opts.logFormat)
	logger.Debug("configuration", "config", cfg)
	return cfg, logger, nil
}

func applyFlags(cfg *config.Config, opts *cliOptions, changed map[string]bool) {
	if changed["debug"] {
		cfg.Debug = opts.debug
	}
	if changed["templates"] {
		cfg.TemplateDir = opts.templateDir
	}
	if changed["threshold"] {
		cfg.Threshold = opts.threshold
	}
	if changed["workers"] {
		cfg.TemplateWorkers = opts.workers
	}
	if changed["diagnostics-dir"] {
		cfg.DiagnosticsDir = opts.diagnosticsDir
	}
}
