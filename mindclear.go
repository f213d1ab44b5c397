// Package mindclear assembles the offline-first data layer: the local
// SQLite mirror, the push/pull sync engine with its background runner, and
// the momentum mode selector. Callers embed an App in their client and talk
// to the store for reads and writes; the sync machinery keeps the mirror
// converged with the server.
package mindclear

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bMacroni/MindClear-sub005/internal/credential"
	"github.com/bMacroni/MindClear-sub005/internal/focus"
	"github.com/bMacroni/MindClear-sub005/internal/logging"
	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/internal/remote"
	"github.com/bMacroni/MindClear-sub005/internal/store"
	"github.com/bMacroni/MindClear-sub005/internal/sync"
)

// App holds the wired-up data layer.
type App struct {
	Config *model.AppConfig
	Store  store.Store
	Sync   *sync.Runner
	Focus  *focus.Service
	Logger *zap.Logger

	sqlite *store.SQLiteStore
}

// Options tweak how Open assembles the app.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Token overrides the keyring lookup for the API bearer token. Useful
	// for tests and for platforms without a keyring backend.
	Token string

	// Development switches the logger to the human-readable console
	// encoder.
	Development bool

	// OnSyncResult, if non-nil, is invoked after every sync cycle.
	OnSyncResult func(sync.Result, error)
}

// Open loads configuration, opens the local store, and wires the sync
// engine and momentum mode service. The background runner is created but
// not started; call App.Sync.Start once the caller is ready to go online.
func Open(opts Options) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(opts.Development)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	token := opts.Token
	if token == "" {
		token, err = credential.Token()
		if err != nil {
			return nil, fmt.Errorf("loading API token: %w", err)
		}
	}

	sqlite, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	api := remote.NewClient(cfg.API.BaseURL, token, time.Duration(cfg.API.TimeoutSec)*time.Second)
	engine := sync.NewEngine(sqlite, api, logger)
	runner := sync.NewRunner(engine, time.Duration(cfg.Sync.IntervalSec)*time.Second, logger, opts.OnSyncResult)

	return &App{
		Config: cfg,
		Store:  sqlite,
		Sync:   runner,
		Focus:  focus.NewService(sqlite, logger),
		Logger: logger,
		sqlite: sqlite,
	}, nil
}

// TravelPreference returns the configured momentum mode preference,
// defaulting to allow_travel for unknown values.
func (a *App) TravelPreference() model.TravelPreference {
	if model.TravelPreference(a.Config.Focus.TravelPreference) == model.TravelHomeOnly {
		return model.TravelHomeOnly
	}
	return model.TravelAllowTravel
}

// Close stops the background runner and closes the local store.
func (a *App) Close() error {
	a.Sync.Stop()
	return a.sqlite.Close()
}
