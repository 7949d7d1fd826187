package connection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/protocol"
)

// Heartbeat is the missed-pong detector. Every interval it evicts connections
// whose alive flag is still clear from the previous sweep, then clears the
// flag on the rest and pings them. A pong sets the flag again, so a silent
// peer is evicted exactly one interval after the ping it ignored.
type Heartbeat struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeat creates a monitor over registry. It does nothing until Start.
func NewHeartbeat(registry *Registry, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	return &Heartbeat{
		registry: registry,
		interval: interval,
		logger:   logger.With("component", "heartbeat"),
		metrics:  m,
	}
}

// Start launches the sweep loop. It returns immediately; calling Start on a
// running monitor is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		return
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.wg.Add(1)
	go h.loop(ctx)

	h.logger.Info("heartbeat started", "interval", h.interval)
}

// Stop halts the sweep loop and waits for it to exit. Safe to call more than
// once; a stopped monitor can be started again.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel == nil {
		return
	}
	h.cancel()
	h.wg.Wait()
	h.cancel = nil
}

func (h *Heartbeat) loop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("heartbeat stopped")
			return
		case <-ticker.C:
			result := h.Sweep()
			if result.Evicted > 0 {
				h.logger.Info("heartbeat sweep evicted connections",
					"evicted", result.Evicted,
					"pinged", result.Pinged,
				)
			}
		}
	}
}

// Sweep runs one liveness pass over the live set.
func (h *Heartbeat) Sweep() SweepResult {
	var result SweepResult

	conns := h.registry.All()
	if len(conns) == 0 {
		return result
	}

	data, err := protocol.Encode(protocol.Ping{}, time.Now())
	if err != nil {
		h.logger.Error("failed to encode ping", "error", err)
		return result
	}
	ping := Frame{Type: protocol.TypePing, Data: data}

	for _, c := range conns {
		if !c.expireLiveness() {
			c.Logger().Info("connection missed heartbeat, terminating")
			c.Close()
			h.registry.Unregister(c)
			h.metrics.Evictions.Inc()
			result.Evicted++
			continue
		}

		if err := c.Enqueue(ping); err != nil {
			c.Logger().Debug("failed to queue ping", "error", err)
		}
		result.Pinged++
	}

	return result
}
