package command

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/config"
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/generator"
	"github.com/tomatool/gherkinplan/internal/plan"
	"github.com/tomatool/gherkinplan/internal/stepdef"
	"github.com/urfave/cli/v2"
)

// workspace is everything a command needs to generate plans.
type workspace struct {
	cfg     *config.Config
	catalog *stepdef.Catalog
	defs    *stepdef.Definitions
}

func loadWorkspace(c *cli.Context) (*workspace, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	catalog := &stepdef.Catalog{}
	for _, path := range cfg.Steps.Catalogs {
		other, err := stepdef.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		catalog.Merge(other)
	}

	var opts []stepdef.Option
	if !cfg.Settings.IsAnchored() {
		opts = append(opts, stepdef.Unanchored())
	}
	defs := stepdef.New(opts...)
	if err := catalog.Register(defs); err != nil {
		return nil, fmt.Errorf("registering step catalog: %w", err)
	}
	log.Debug().Int("definitions", defs.Len()).Msg("step definitions registered")

	return &workspace{cfg: cfg, catalog: catalog, defs: defs}, nil
}

// loadConfig reads the config file. A missing default config file is not an
// error; the defaults are used instead.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || c.IsSet("config") {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		cfg = config.Default()
	}

	if !c.IsSet("log-level") {
		if level, err := zerolog.ParseLevel(cfg.Settings.LogLevel); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
	return cfg, nil
}

// plans generates a plan for every feature file found under paths, or under
// the configured feature paths when none are given.
func (w *workspace) plans(paths []string) ([]*plan.FeatureTest, error) {
	if len(paths) == 0 {
		paths = w.cfg.Features.Paths
	}

	files, err := feature.Discover(paths)
	if err != nil {
		return nil, err
	}

	plans := make([]*plan.FeatureTest, 0, len(files))
	for _, file := range files {
		ft, err := w.generate(file)
		if err != nil {
			return nil, err
		}
		plans = append(plans, ft)
	}
	return plans, nil
}

func (w *workspace) generate(file string) (*plan.FeatureTest, error) {
	var opts []generator.Option
	if w.cfg.Settings.UseNotFound() {
		opts = append(opts, generator.WithAlternate(stepdef.NotFound))
	}

	g, err := generator.Load(file, w.defs, opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

func totals(plans []*plan.FeatureTest) plan.Stats {
	var stats plan.Stats
	for _, ft := range plans {
		stats.Add(ft.Stats())
	}
	return stats
}
