package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Moongates/internal/data"
	"Moongates/internal/game"
	"Moongates/internal/persist"
	"Moongates/internal/script"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// App wires the shard to its clock, data, persistence, hook and transport.
type App struct {
	cfg   *Config
	log   *zap.Logger
	hub   *Hub
	store persist.Store
	hook  *script.HookRunner
	table *data.Table
}

func NewApp(cfg *Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	table, err := data.Load(cfg.Data.TablePath)
	if err != nil {
		return nil, err
	}

	clock := game.NewGameClock(cfg.Clock.Epoch, cfg.Clock.SecondsPerMinute)
	shard := game.NewShard(clock, log.Named("moongate"))
	shard.SetTiming(cfg.Moongate.Timing())
	shard.RestoreOpenEnded = cfg.Moongate.RestoreOpenEndedGates
	shard.Regions = table

	hub := NewHub(shard, log.Named("ws"))
	hub.DebugProfiles = cfg.Server.DebugProfiles
	if hub.DebugProfiles {
		log.Warn("debug profiles enabled, clients may pose as staff")
	}

	app := &App{
		cfg:   cfg,
		log:   log,
		hub:   hub,
		store: persist.Store{Path: cfg.Persistence.Path},
		table: table,
	}

	if cfg.Scripting.HookPath != "" {
		hook, err := script.NewHookRunner(cfg.Scripting.HookPath, log.Named("hook"))
		if err != nil {
			log.Warn("hook script not loaded", zap.Error(err))
		}
		app.hook = hook
		shard.Hook = hook
	}
	return app, nil
}

// Boot fills the shard from the save file, or from the boot table when
// there is no save yet.
func (a *App) Boot() error {
	saved, err := a.store.Load()
	if err != nil {
		a.log.Warn("save file unreadable, starting from boot table", zap.Error(err))
		saved = nil
	}
	shard := a.hub.Shard
	shard.Mu.Lock()
	defer shard.Mu.Unlock()
	if len(saved) > 0 {
		report := shard.Restore(saved)
		if report.Err == nil || report.Gates+report.Controllers+report.PublicGates > 0 {
			return nil
		}
		a.log.Warn("save file unusable, starting from boot table", zap.Error(report.Err))
	}
	spawned, err := a.table.Spawn(shard)
	if err != nil {
		return fmt.Errorf("spawn boot table: %w", err)
	}
	a.log.Info("boot table spawned",
		zap.Int("controllers", spawned.Regen.Created+spawned.Controllers),
		zap.Int("publicGates", spawned.PublicGates),
		zap.Int("gates", spawned.Gates),
	)
	return nil
}

// Save encodes the shard under its lock and writes the file outside it.
func (a *App) Save() error {
	shard := a.hub.Shard
	shard.Mu.Lock()
	snapshot := shard.Encode()
	shard.Mu.Unlock()
	return a.store.Save(snapshot)
}

func (a *App) tickLoop(ctx context.Context) {
	rate := a.cfg.Server.TickRate
	if rate <= 0 {
		rate = 50 * time.Millisecond
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.hub.Shard.Tick(now.Sub(last))
			last = now
		}
	}
}

func (a *App) saveLoop(ctx context.Context) {
	interval := a.cfg.Persistence.SaveInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Save(); err != nil {
				a.log.Error("periodic save failed", zap.Error(err))
			}
		}
	}
}

// Run serves until ctx ends, then saves once more.
func (a *App) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	go a.tickLoop(ctx)
	go a.saveLoop(ctx)
	if a.hook != nil && a.cfg.Scripting.Watch {
		go func() {
			if err := a.hook.Watch(ctx); err != nil {
				a.log.Warn("hook watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: newMux(a.hub, a.cfg.Server, a.Save),
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting web server", zap.String("addr", a.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if err := a.Save(); err != nil {
		a.log.Error("final save failed", zap.Error(err))
	} else {
		a.log.Info("world saved", zap.String("path", a.cfg.Persistence.Path))
	}
	return serveErr
}

// StartApp builds the logger and the app from cfg and runs until ctx ends.
func StartApp(ctx context.Context, cfg *Config) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
