package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeep/internal/bridge"
	"github.com/tabkeep/tabkeep/internal/capture"
	"github.com/tabkeep/tabkeep/internal/config"
	"github.com/tabkeep/tabkeep/internal/detect"
	"github.com/tabkeep/tabkeep/internal/httpserver"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/redis"
	"github.com/tabkeep/tabkeep/internal/reminder"
	"github.com/tabkeep/tabkeep/internal/scheduler"
	"github.com/tabkeep/tabkeep/internal/sources/rules"
	"github.com/tabkeep/tabkeep/internal/state"
	redisstore "github.com/tabkeep/tabkeep/internal/store/redis"
	"github.com/tabkeep/tabkeep/internal/tabs"
	"github.com/tabkeep/tabkeep/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *redisstore.Store
	state       *state.Store
	syncer      *scheduler.StateSyncer
	reloader    *scheduler.RulesReloader
	gc          *scheduler.TrashCollector
	registry    *tabs.Registry
	reminders   *reminder.Scheduler
	detector    *detect.Detector
	mirror      *bridge.Mirror
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	// In-memory snapshot of all collections, fed by storage change events
	stateStore := state.New(store, loggerClient)
	syncer := scheduler.NewStateSyncer(stateStore, loggerClient)

	// Triage rules: built-in defaults until the rules file loads
	rulesProvider := rules.NewProvider(rules.Map(nil))
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewRulesReloader(
		cfg.RulesFile,
		rulesProvider,
		loggerClient,
		cfg.RulesReloadInterval,
		reloadTrigger,
	)

	captureEngine := capture.New(store, rulesProvider, loggerClient)
	registry := tabs.NewRegistry(captureEngine, rulesProvider, loggerClient)

	// Agent bridge: command queue, tab mirror, notification routing
	commands := bridge.NewQueue()
	history := bridge.NewHistory()
	mirror := bridge.NewMirror(commands, history, loggerClient)
	notifier := bridge.NewNotifier(commands, mirror, cfg.MainViewURL, loggerClient)

	reminders := reminder.NewScheduler(
		store,
		store,
		notifier,
		loggerClient,
		cfg.MinAlarmDelay,
		cfg.AlarmTick,
	)

	detector := detect.New(mirror, loggerClient, cfg.DebounceWindow, cfg.DetectPollInterval)

	gc := scheduler.NewTrashCollector(
		store,
		store,
		loggerClient,
		cfg.GCInterval,
		cfg.TrashTTL,
	)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RedisClient:   redisClient,
		Store:         store,
		State:         stateStore,
		Registry:      registry,
		Reminders:     reminders,
		Detector:      detector,
		Mirror:        mirror,
		Commands:      commands,
		Notifier:      notifier,
		History:       history,
		ReloadTrigger: reloadTrigger,
		MainViewURL:   cfg.MainViewURL,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		state:       stateStore,
		syncer:      syncer,
		reloader:    reloader,
		gc:          gc,
		registry:    registry,
		reminders:   reminders,
		detector:    detector,
		mirror:      mirror,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting tabkeepd %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("tabkeepd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscribe to storage change events before the initial load so nothing
	// published in between is missed.
	changes, err := a.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch storage changes: %w", err)
	}
	go a.state.Run(ctx, changes)

	if err := a.syncer.Sync(ctx); err != nil {
		a.logger.Warn("initial state load failed, continuing with empty state",
			logger.Error(err))
	}

	// Start rules reloader (loads rules and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rules reloader: %w", err)
	}
	a.logger.Info("rules reloader started",
		logger.Duration("interval", a.cfg.RulesReloadInterval))

	// Start trash collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start trash collector: %w", err)
	}
	a.logger.Info("trash collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	// Start reminder fire loop
	if err := a.reminders.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}
	a.logger.Info("reminder scheduler started",
		logger.Duration("tick", a.cfg.AlarmTick))

	// Start open-item detection, candidates follow the inbox
	if err := a.detector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start open-item detector: %w", err)
	}
	unsubscribe := a.state.Subscribe(func(snapshot state.Snapshot) {
		a.detector.SetCandidates(snapshot.Inbox)
	})
	defer unsubscribe()
	if snapshot, ok := a.state.Current(); ok {
		a.detector.SetCandidates(snapshot.Inbox)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.gc.Stop()
	a.reminders.Stop()
	a.detector.Teardown()
	a.registry.Teardown()
	a.mirror.Teardown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("Redis closed cleanly")
		}
	}

	a.logger.Info("tabkeepd stopped cleanly")
	return nil
}
