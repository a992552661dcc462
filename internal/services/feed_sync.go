package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Refresher reloads the live activity feed from the event store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// FeedSyncConfig controls how often the feed is reloaded.
type FeedSyncConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// FeedSync periodically reloads the feed so subscribers catch up on inserts
// whose change notification was lost.
type FeedSync struct {
	feed    Refresher
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     FeedSyncConfig
}

func NewFeedSync(feed Refresher, monitor ConnectionHealth, logger *zap.Logger, cfg FeedSyncConfig) (*FeedSync, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 || cfg.Timeout > cfg.Interval {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fs := &FeedSync{
		feed:    feed,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := fs.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := fs.Sync(ctx); err != nil {
			fs.logger.Error("feed resync failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return fs, nil
}

// Start launches the cron scheduler.
func (fs *FeedSync) Start() {
	if fs == nil || fs.cron == nil {
		return
	}
	fs.cron.Start()
	fs.logger.Info("feed resync started", zap.Duration("interval", fs.cfg.Interval))
}

// Stop waits for a running resync or ctx, whichever ends first.
func (fs *FeedSync) Stop(ctx context.Context) {
	if fs == nil || fs.cron == nil {
		return
	}
	stopCtx := fs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	fs.logger.Info("feed resync stopped")
}

// Sync reloads the feed once, skipping while dependencies are offline.
func (fs *FeedSync) Sync(ctx context.Context) error {
	if fs == nil || fs.feed == nil {
		return nil
	}
	if fs.monitor != nil && !fs.monitor.IsOnline() {
		fs.logger.Debug("skipping feed resync (offline)")
		return nil
	}
	return fs.feed.Refresh(ctx)
}
