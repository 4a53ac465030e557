// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/adapter"
	"github.com/MKhiriev/go-ledger-sync/internal/cloud"
	"github.com/MKhiriev/go-ledger-sync/internal/config"
	"github.com/MKhiriev/go-ledger-sync/internal/crdt"
	"github.com/MKhiriev/go-ledger-sync/internal/crypto"
	"github.com/MKhiriev/go-ledger-sync/internal/cursor"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/persist"
	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/MKhiriev/go-ledger-sync/internal/store"
	"github.com/MKhiriev/go-ledger-sync/internal/task"
	"github.com/MKhiriev/go-ledger-sync/internal/tui"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/internal/watcher"
	"github.com/MKhiriev/go-ledger-sync/internal/workers"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Cloud record keys.
const (
	settingsKey = "settings"
	launchesKey = "launches"
)

// Settings written to a freshly created settings document.
const (
	defaultCurrency = "USD"
	defaultTheme    = "system"
)

// App is the sync daemon.
type App struct {
	cfg       *config.ClientConfig
	buildInfo models.BuildInfo
	logger    *logger.Logger

	status   *status.Aggregator
	tracker  *cursor.Tracker
	accounts *accountSync
	registry *cloud.Registry
	metrics  *metricsServer
	settings *cloud.Value[models.Settings]
	launches *cloud.Value[models.CounterValue]
	workers  *workers.Workers

	unsubscribe []func()
	closeKV     func() error
}

// deps are the outer edges of the App, replaced in tests.
type deps struct {
	kv       persist.KV
	storage  adapter.StorageAdapter
	chain    adapter.ChainAdapter
	dialer   watcher.Dialer
	keychain crypto.Keychain
	closeKV  func() error
}

// NewApp opens local storage, builds the remote adapters and wires the sync
// graph. Background work is bound to ctx and starts with Run.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.BuildInfo, log *logger.Logger) (*App, error) {
	kc, err := newKeychain(cfg.App)
	if err != nil {
		return nil, err
	}

	v := validators.NewStructValidator()
	storageAdapter, err := adapter.NewHTTPStorageAdapter(cfg.Adapter, v, log)
	if err != nil {
		return nil, fmt.Errorf("create storage adapter: %w", err)
	}
	chainAdapter, err := adapter.NewHTTPChainAdapter(cfg.Adapter, v, log)
	if err != nil {
		return nil, fmt.Errorf("create chain adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	app, err := newApp(ctx, cfg, deps{
		kv:       storages.KV,
		storage:  storageAdapter,
		chain:    chainAdapter,
		dialer:   watcher.NewWebsocketDialer(nil),
		keychain: kc,
		closeKV:  storages.Close,
	}, buildInfo, log)
	if err != nil {
		_ = storages.Close()
		return nil, err
	}

	return app, nil
}

func newApp(ctx context.Context, cfg *config.ClientConfig, d deps, buildInfo models.BuildInfo, log *logger.Logger) (app *App, err error) {
	if len(cfg.App.Addresses) == 0 {
		return nil, ErrNoAddresses
	}

	wiped, err := persist.MigrateVersion(ctx, d.kv, cfg.App.StorageVersion, log)
	if err != nil {
		return nil, err
	}
	if wiped {
		log.Info().Int("version", cfg.App.StorageVersion).Msg("local storage reset to new version")
	}

	app = &App{
		cfg:       cfg,
		buildInfo: buildInfo,
		logger:    log.WithComponent("app"),
		tracker:   cursor.NewTracker(validators.NewStructValidator(), log),
		workers:   workers.New(),
		closeKV:   d.closeKV,
	}
	defer func() {
		if err != nil {
			app.stop()
		}
	}()

	app.status, err = app.newStatus()
	if err != nil {
		return nil, err
	}

	taskOpts := []task.Option{
		task.WithStatus(app.status),
		task.WithRetry(cfg.Workers.RetryBase, cfg.Workers.RetryCap),
		task.WithLogger(log),
	}

	app.accounts, err = newAccountSync(ctx, d.chain, d.kv, cfg.App.Addresses, log, taskOpts...)
	if err != nil {
		return nil, err
	}
	app.unsubscribe = append(app.unsubscribe,
		app.tracker.OnNewSession(app.accounts.onNewSession),
		app.tracker.OnDelta(app.accounts.onDelta),
	)

	if err = app.addWatchers(d.dialer); err != nil {
		return nil, err
	}

	cloudStore := cloud.NewStore(d.storage, d.keychain, cloud.WithStoreLogger(log.WithComponent("cloud")))
	app.registry, err = cloud.NewRegistry(ctx, cloudStore, d.kv, log, taskOpts...)
	if err != nil {
		return nil, err
	}
	app.settings, err = cloud.Get[models.Settings](app.registry, settingsKey, initSettings)
	if err != nil {
		return nil, err
	}
	app.launches, err = cloud.Counter(app.registry, launchesKey)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// newStatus creates the sync indicator. With a metrics address its counters
// are also exported as gauges on that address.
func (a *App) newStatus() (*status.Aggregator, error) {
	if a.cfg.App.MetricsAddress == "" {
		return status.New(), nil
	}

	reg := prometheus.NewRegistry()
	agg := status.New(status.WithRegisterer(reg))
	ms, err := newMetricsServer(a.cfg.App.MetricsAddress, reg, a.logger)
	if err != nil {
		return nil, err
	}
	a.metrics = ms
	a.workers.Add(ms)

	return agg, nil
}

func (a *App) addWatchers(dialer watcher.Dialer) error {
	w := a.cfg.Workers
	common := []watcher.Option{
		watcher.WithConnectTimeout(w.ConnectTimeout),
		watcher.WithBackoff(watcher.Backoff{
			Floor:       w.BackoffFloor,
			Ceiling:     w.BackoffCeiling,
			MaxFailures: w.MaxFailures,
		}),
		watcher.WithStatus(a.status),
		watcher.WithLogger(a.logger),
	}

	blocks := watcher.New("blocks", a.cfg.Adapter.BlocksEndpoint, dialer, a.tracker.Handle,
		append(common, watcher.WithMessageTimeout(w.BlockMessageTimeout))...)
	a.workers.Add(blocks)

	if a.cfg.Adapter.AccountEndpoint == "" {
		return nil
	}

	v := validators.NewStructValidator()
	for _, address := range a.cfg.App.Addresses {
		feed, err := newAccountFeed(a.cfg.Adapter.AccountEndpoint, address, dialer, a.accounts, v, a.logger,
			append(common, watcher.WithMessageTimeout(w.AccountMessageTimeout))...)
		if err != nil {
			return err
		}
		a.workers.Add(feed)
	}

	return nil
}

// Run starts the watchers, counts the launch and blocks until ctx is done. With
// the monitor enabled it blocks until the monitor exits instead.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().
		Int("addresses", len(a.cfg.App.Addresses)).
		Int("workers", a.workers.Len()).
		Str("network", a.cfg.App.Network).
		Msg("starting sync")

	a.workers.Start(ctx)

	if err := cloud.Increment(ctx, a.launches, 1); err != nil {
		a.logger.Error().Err(err).Str("func", "*App.Run").Msg("failed to count launch")
	}

	if a.cfg.App.Monitor {
		monitor := tui.NewMonitor(a, a.buildInfo, a.logger)
		if err := monitor.Run(ctx); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		return nil
	}

	<-ctx.Done()
	return nil
}

// Close stops background sync and closes local storage.
func (a *App) Close() error {
	a.stop()
	if a.closeKV == nil {
		return nil
	}
	return a.closeKV()
}

func (a *App) stop() {
	for _, u := range a.unsubscribe {
		u()
	}
	a.unsubscribe = nil

	a.workers.Stop()
	if a.accounts != nil {
		a.accounts.stop()
	}
	if a.registry != nil {
		a.registry.Stop()
	}
}

// ── monitor source ────────────────────────────────────────────────────────────

// Status returns the sync indicator counters.
func (a *App) Status() status.Snapshot {
	return a.status.Snapshot()
}

// Wallets returns the derived wallet views.
func (a *App) Wallets() []models.WalletView {
	return a.accounts.wallets()
}

// Settings returns the synced settings.
func (a *App) Settings() models.Settings {
	return a.settings.Value()
}

// Launches returns how many times the client was started across devices.
func (a *App) Launches() int64 {
	return a.launches.Value().Counter
}

// Refresh re-fetches every account and syncs the cloud documents.
func (a *App) Refresh(ctx context.Context) error {
	return errors.Join(
		a.accounts.refreshAll(ctx),
		a.settings.Sync(ctx),
		a.launches.Sync(ctx),
	)
}

// Subscribe registers fn for any change the monitor renders.
func (a *App) Subscribe(fn func()) func() {
	unsubs := []func(){
		a.status.Subscribe(func(status.Snapshot) { fn() }),
		a.accounts.subscribe(fn),
		a.settings.Subscribe(func(models.Settings) { fn() }),
		a.launches.Subscribe(func(models.CounterValue) { fn() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func initSettings(doc *crdt.Document) error {
	return errors.Join(
		doc.Set("currency", defaultCurrency),
		doc.Set("theme", defaultTheme),
	)
}

func newKeychain(cfg config.ClientApp) (crypto.Keychain, error) {
	var master []byte
	if cfg.MasterKey != "" {
		key, err := hex.DecodeString(cfg.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMasterKey, err)
		}
		master = key
	} else {
		master = crypto.MasterKeyFromPassphrase(cfg.Passphrase, cfg.PassphraseSalt)
	}

	return crypto.NewKeychain(master, cfg.Network)
}
