package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/db"
	"github.com/metalagman/goap/internal/domain"
	"github.com/metalagman/goap/internal/goap/astar"
	"github.com/metalagman/goap/internal/history"
	"github.com/metalagman/goap/internal/logging"
	"github.com/metalagman/goap/internal/planner"
	"github.com/metalagman/goap/internal/probe"
	"github.com/metalagman/goap/internal/worldstate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type (
	rootDir    string
	configFile string
)

// App holds the wired dependencies of a command.
type App struct {
	Root       string
	Config     config.Config
	Domain     *domain.Domain
	Store      *db.Store
	Probes     *probe.Set
	Determiner *worldstate.Determiner
	Searcher   *astar.Searcher
	Recorder   *history.Recorder
}

// Planner builds a planner reading the world through det.
func (a *App) Planner(det planner.WorldStateDeterminer) *planner.Planner {
	return planner.New(det, a.Searcher, planner.WithLogger(logging.Component("planner")))
}

func newApp(
	root rootDir,
	cfg config.Config,
	d *domain.Domain,
	store *db.Store,
	probes *probe.Set,
	det *worldstate.Determiner,
	searcher *astar.Searcher,
	rec *history.Recorder,
) *App {
	return &App{
		Root:       string(root),
		Config:     cfg,
		Domain:     d,
		Store:      store,
		Probes:     probes,
		Determiner: det,
		Searcher:   searcher,
		Recorder:   rec,
	}
}

func provideConfig(root rootDir, path configFile) (config.Config, error) {
	return config.Load(viper.New(), string(root), string(path))
}

func provideDatabase(lc fx.Lifecycle, cfg config.Config) (*sql.DB, error) {
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close()
		},
	})
	return database, nil
}

func provideDomain(cfg config.Config) (*domain.Domain, error) {
	return domain.Load(cfg.Domain)
}

func provideProbes(root rootDir, cfg config.Config, d *domain.Domain) (*probe.Set, error) {
	set, err := probe.NewSet(cfg.Probes, d.ProbeFor, string(root), probe.WithDescriber(d.Describe))
	if err != nil {
		return nil, fmt.Errorf("build probes: %w", err)
	}
	if err := d.CheckProbes(set.Has); err != nil {
		return nil, err
	}
	return set, nil
}

func provideDeterminer(cfg config.Config, store *db.Store, d *domain.Domain, probes *probe.Set) *worldstate.Determiner {
	return worldstate.NewDeterminer(store, d.ConditionNames(), probes,
		worldstate.WithPersist(cfg.Planner.PersistResolved),
		worldstate.WithLogger(logging.Component("worldstate")),
	)
}

func provideSearcher(cfg config.Config) *astar.Searcher {
	return astar.New(astar.WithMaxExpansions(cfg.Planner.MaxExpansions))
}

func provideRecorder(store *db.Store) *history.Recorder {
	return history.NewRecorder(store, logging.Component("history"))
}

// withApp wires the project at root, runs fn and tears everything down.
func withApp(ctx context.Context, root, path string, fn func(ctx context.Context, a *App) error) error {
	var a *App
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(rootDir(root), configFile(path)),
		fx.Provide(
			provideConfig,
			provideDatabase,
			db.NewStore,
			provideDomain,
			provideProbes,
			provideDeterminer,
			provideSearcher,
			provideRecorder,
			newApp,
		),
		fx.Populate(&a),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	defer func() {
		if err := fxApp.Stop(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to stop app")
		}
	}()
	return fn(ctx, a)
}

// runWithApp wires the project in the working directory for cmd.
func runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), root, configPathFlag(), fn)
}
