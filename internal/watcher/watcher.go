// Package watcher implements the change detector: it advances per-channel
// watermarks over the chat platform's messages and triggers page
// revalidation when fresh link material appears.
package watcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/telemetry"
)

// Source lists channels and messages, propagating fetch errors. A failed
// fetch must fail the tick, so the fail-open page variants are not used here.
type Source interface {
	Channels(ctx context.Context) ([]garden.Channel, error)
	Messages(ctx context.Context, channelID string) ([]garden.RawMessage, error)
}

// WatermarkStore persists detector progress.
type WatermarkStore interface {
	Watermark(channelID string) (string, error)
	SetWatermark(channelID, messageID string) error
	AcquireLease(name string, ttl time.Duration) (bool, error)
	ReleaseLease(name string) error
}

// Revalidator invalidates the cached links page.
type Revalidator interface {
	Trigger(ctx context.Context) error
}

// Config controls the Watcher.
type Config struct {
	Interval time.Duration
	LeaseTTL time.Duration
}

const leaseName = "watch-tick"

// Watcher runs the change-detection loop.
type Watcher struct {
	source Source
	store  WatermarkStore
	reval  Revalidator
	cfg    Config
	logger *zap.Logger
}

// New constructs a Watcher.
func New(source Source, store WatermarkStore, reval Revalidator, cfg Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = cfg.Interval - cfg.Interval/5
	}
	return &Watcher{
		source: source,
		store:  store,
		reval:  reval,
		cfg:    cfg,
		logger: logger,
	}
}

// Run ticks immediately and then on the configured interval until the
// context finishes. Tick errors are logged and the loop keeps going; the
// next interval is the retry.
func (w *Watcher) Run(ctx context.Context) {
	if err := w.Tick(ctx); err != nil {
		w.logger.Error("watch tick failed", zap.Error(err))
	}
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				w.logger.Error("watch tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one detection pass. Any channel whose newest qualifying message
// ID exceeds the stored watermark advances that watermark; revalidation
// fires at most once per tick no matter how many channels had news. A single
// failing channel fetch fails the whole tick so no watermark moves past
// unseen messages.
func (w *Watcher) Tick(ctx context.Context) error {
	acquired, err := w.store.AcquireLease(leaseName, w.cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("acquire watch lease: %w", err)
	}
	if !acquired {
		w.logger.Warn("previous watch tick still holds the lease, skipping")
		return nil
	}
	defer func() {
		if rerr := w.store.ReleaseLease(leaseName); rerr != nil {
			w.logger.Error("release watch lease failed", zap.Error(rerr))
		}
	}()

	channels, err := w.source.Channels(ctx)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	anyNew := false
	for _, ch := range channels {
		fresh, err := w.checkChannel(ctx, ch)
		if err != nil {
			return fmt.Errorf("check channel %s: %w", ch.Name, err)
		}
		if fresh {
			anyNew = true
		}
	}

	if !anyNew {
		return nil
	}
	if err := w.reval.Trigger(ctx); err != nil {
		return fmt.Errorf("trigger revalidation: %w", err)
	}
	w.logger.Info("revalidation triggered", zap.Int("channels", len(channels)))
	return nil
}

func (w *Watcher) checkChannel(ctx context.Context, ch garden.Channel) (bool, error) {
	msgs, err := w.source.Messages(ctx, ch.ID)
	if err != nil {
		return false, err
	}
	watermark, err := w.store.Watermark(ch.ID)
	if err != nil {
		return false, err
	}

	fresh := 0
	for _, m := range msgs {
		if garden.CompareSnowflakes(m.ID, watermark) > 0 && strings.Contains(m.Content, "http") {
			fresh++
		}
	}
	telemetry.ObserveScan(ch.Name, len(msgs), fresh)
	if fresh == 0 {
		return false, nil
	}

	// Messages arrive newest first, so the first element carries the new
	// watermark.
	newest := msgs[0].ID
	if err := w.store.SetWatermark(ch.ID, newest); err != nil {
		return false, err
	}
	w.logger.Info("new link messages detected",
		zap.String("channel", ch.Name),
		zap.Int("fresh", fresh),
		zap.String("watermark", newest),
	)
	return true, nil
}
