package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/sources/rules"
)

// RulesReloader handles periodic reloading of the triage rules file and
// swaps the result into the shared rules provider.
type RulesReloader struct {
	loader        *rules.Loader
	provider      *rules.Provider
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRulesReloader creates a new rules reloader.
func NewRulesReloader(
	rulesFile string,
	provider *rules.Provider,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RulesReloader {
	return &RulesReloader{
		loader:        rules.NewLoader(rulesFile),
		provider:      provider,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process.
func (rr *RulesReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial rules load failed: %w", err)
	}

	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload rules",
						logger.Error(err))
				}
			case <-rr.manualTrigger:
				rr.logger.Info("manual rules reload triggered")
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload rules",
						logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (rr *RulesReloader) Stop() {
	close(rr.stopCh)
}

// Reload reads the rules file and swaps the mapped rules into the provider.
// A missing or unset file yields the built-in defaults.
func (rr *RulesReloader) Reload(_ context.Context) error {
	config, err := rr.loader.Load()
	if err != nil {
		return fmt.Errorf("load rules file: %w", err)
	}

	mapped := rules.Map(config)
	rr.provider.Swap(mapped)

	rr.logger.Info("rules reloaded",
		logger.Int("tracking_params", len(mapped.TrackingParams())))

	return nil
}
