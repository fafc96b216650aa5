package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/internal/infrastructure/notify"
	"github.com/fastygo/teamboard/internal/infrastructure/outbox"
	"github.com/fastygo/teamboard/internal/metrics"
	"github.com/fastygo/teamboard/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// OutboxConfig controls how the outbox is drained and pruned.
type OutboxConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// NotificationOutbox delivers notifications, parking them in BoltDB when
// delivery is not possible right now. A cron job retries parked items.
type NotificationOutbox struct {
	store   *outbox.Store
	sender  notify.Sender
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     OutboxConfig
	now     func() time.Time
}

func NewNotificationOutbox(
	store *outbox.Store,
	sender notify.Sender,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg OutboxConfig,
) *NotificationOutbox {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &NotificationOutbox{
		store:   store,
		sender:  sender,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = o.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := o.Drain(ctx); err != nil {
			o.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	_, _ = o.cron.AddFunc("@hourly", func() {
		if err := o.Purge(); err != nil {
			o.logger.Error("outbox purge failed", zap.Error(err))
		}
	})

	return o
}

// Start launches the cron scheduler.
func (o *NotificationOutbox) Start() {
	if o == nil || o.cron == nil {
		return
	}
	o.cron.Start()
	o.logger.Info("notification outbox started", zap.Duration("interval", o.cfg.Interval))
}

// Stop waits for a running job to finish or ctx to expire.
func (o *NotificationOutbox) Stop(ctx context.Context) {
	if o == nil || o.cron == nil {
		return
	}
	stopCtx := o.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	o.logger.Info("notification outbox stopped")
}

// Notify sends n right away when dependencies are online and falls back to
// the outbox otherwise. Only a failure to park the notification is
// returned.
func (o *NotificationOutbox) Notify(ctx context.Context, n domain.Notification) error {
	if o == nil || o.store == nil {
		return fmt.Errorf("notification outbox not configured")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = o.now()
	}

	if o.monitor == nil || o.monitor.IsOnline() {
		err := o.sender.Send(ctx, n)
		if err == nil {
			metrics.Notifications.WithLabelValues("sent").Inc()
			return nil
		}
		o.logger.Warn("immediate delivery failed, queueing notification",
			zap.Int64("user_id", n.UserID), zap.Error(err))
	}

	if err := o.store.Enqueue(outbox.Item{Notification: n}); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		return err
	}
	metrics.Notifications.WithLabelValues("queued").Inc()
	return nil
}

// Drain retries a batch of parked notifications in enqueue order.
func (o *NotificationOutbox) Drain(ctx context.Context) error {
	if o == nil || o.store == nil {
		return nil
	}
	if o.monitor != nil && !o.monitor.IsOnline() {
		o.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := o.store.Pending(o.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.sender.Send(ctx, item.Notification); err != nil {
			requeued, rerr := o.store.Retry(item, err, o.cfg.MaxRetries)
			if rerr != nil {
				o.logger.Error("failed to record outbox retry", zap.String("item_id", item.ID), zap.Error(rerr))
				continue
			}
			if !requeued {
				metrics.Notifications.WithLabelValues("dropped").Inc()
				o.logger.Warn("giving up on notification (max retries reached)",
					zap.String("item_id", item.ID), zap.Int("attempts", item.Attempts+1), zap.Error(err))
			}
			continue
		}

		metrics.Notifications.WithLabelValues("sent").Inc()
		if err := o.store.Ack(item); err != nil {
			o.logger.Warn("failed to remove delivered notification", zap.String("item_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

// Purge removes items older than the retention window.
func (o *NotificationOutbox) Purge() error {
	if o == nil || o.store == nil {
		return nil
	}
	removed, err := o.store.Purge(o.now().Add(-o.cfg.Retention))
	if err != nil {
		return err
	}
	if removed > 0 {
		o.logger.Info("purged stale notifications", zap.Int("count", removed))
	}
	return nil
}

// Size returns the number of parked notifications.
func (o *NotificationOutbox) Size() int {
	if o == nil || o.store == nil {
		return 0
	}
	size, err := o.store.Size()
	if err != nil {
		return 0
	}
	return size
}

var _ usecase.Notifier = (*NotificationOutbox)(nil)
