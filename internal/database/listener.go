package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bell24h/realtime/internal/events"
)

// Reconnect backoff bounds for the listener.
const (
	DefaultListenBaseDelay = 1 * time.Second
	DefaultListenMaxDelay  = 30 * time.Second
)

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Channel   string
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Listener subscribes to a NOTIFY channel and dispatches every payload as an
// events.Event.
type Listener struct {
	pool     *pgxpool.Pool
	cfg      ListenerConfig
	notifier events.Notifier
	logger   *slog.Logger
}

// NewListener creates a listener. It does nothing until Run.
func NewListener(pool *pgxpool.Pool, cfg ListenerConfig, notifier events.Notifier, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultListenBaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = DefaultListenMaxDelay
	}

	return &Listener{
		pool:     pool,
		cfg:      cfg,
		notifier: notifier,
		logger:   logger.With("component", "listener", "channel", cfg.Channel),
	}
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff
// whenever the connection is lost. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	delay := l.cfg.BaseDelay

	for {
		err := l.listen(ctx, func() { delay = l.cfg.BaseDelay })
		if ctx.Err() != nil {
			l.logger.Info("listener stopped")
			return nil
		}

		l.logger.Warn("listener disconnected, reconnecting",
			"error", err,
			"delay", delay,
		)

		select {
		case <-ctx.Done():
			l.logger.Info("listener stopped")
			return nil
		case <-time.After(delay):
		}
		delay = nextDelay(delay, l.cfg.MaxDelay)
	}
}

// listen holds one connection for the lifetime of a LISTEN session. onListen
// runs once the subscription is active.
func (l *Listener) listen(ctx context.Context, onListen func()) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}

	// The session carries LISTEN state, so it never goes back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, listenStatement(l.cfg.Channel)); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	onListen()
	l.logger.Info("listening for events")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.handle(n.Payload)
	}
}

// handle dispatches one notification payload. Bad payloads are logged and skipped.
func (l *Listener) handle(payload string) {
	ev, err := events.Decode([]byte(payload))
	if err == nil {
		err = events.Dispatch(l.notifier, ev)
	}
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, events.ErrUnknownEvent) {
			level = slog.LevelDebug
		}
		l.logger.Log(context.Background(), level, "skipping notification", "event", ev.Event, "error", err)
		return
	}

	l.logger.Debug("event dispatched", "event", ev.Event)
}

func listenStatement(channel string) string {
	return "LISTEN " + pgx.Identifier{channel}.Sanitize()
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
