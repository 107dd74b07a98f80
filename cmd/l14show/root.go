package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"l14core/pkg/config"
	"l14core/pkg/layout"
	"l14core/pkg/logging"
	"l14core/pkg/page"
	"l14core/pkg/text"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app is the state every subcommand shares once PersistentPreRunE has run.
type app struct {
	cfgFile  string
	cfg      *config.Config
	log      *zap.Logger
	renderer *page.Renderer
	restore  func()
}

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"width":        "viewport.width",
	"height":       "viewport.height",
	"layout-limit": "viewport.layout_limit",
	"offline":      "fetch.offline",
	"concurrency":  "fetch.concurrency",
	"log-level":    "logger.level",
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaults := config.NewDefaultConfig()

	root := &cobra.Command{
		Use:           "l14show",
		Short:         "Lay out and paint HTML documents.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./l14.yaml)")
	pf.Int("width", defaults.Viewport.Width, "viewport width in pixels")
	pf.Int("height", defaults.Viewport.Height, "viewport height in pixels")
	pf.Int("layout-limit", defaults.Viewport.LayoutLimit, "lay out content down to this y (0 means the viewport height)")
	pf.Bool("offline", defaults.Fetch.Offline, "never fetch over the network")
	pf.Int("concurrency", defaults.Fetch.Concurrency, "resource fetches in flight")
	pf.String("log-level", defaults.Logger.Level, "debug, info, warn or error")

	root.AddCommand(
		newRenderCmd(a),
		newDumpCmd(a),
		newBatchCmd(a),
		newCompareCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log, a.restore = logging.Install(cfg.Logger)

	m, err := text.NewMeasurer()
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	a.renderer = page.NewRenderer(m, cfg.Fetch, cfg.Render.Background)
	a.log.Debug("configured",
		zap.String("version", Version),
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height),
		zap.Bool("offline", cfg.Fetch.Offline))
	return nil
}

func (a *app) close() {
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
}

func (a *app) viewport() layout.Viewport {
	return page.ViewportFrom(a.cfg.Viewport)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Root().PersistentFlags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}
