package connection

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/protocol"
)

// Conn is one live client socket plus its liveness and identity state.
type Conn struct {
	id      string
	cfg     ConnConfig
	socket  Socket
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue         *sendQueue
	done          chan struct{}
	writeLoopDone chan struct{}

	// State
	mu       sync.RWMutex
	alive    bool
	identity *Identity // nil until authenticate
	closed   bool
}

// NewConn wraps socket and starts its writer goroutine.
func NewConn(socket Socket, cfg ConnConfig, logger *slog.Logger, m *metrics.Metrics) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = DefaultConnConfig().SendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConnConfig().WriteTimeout
	}

	id := uuid.NewString()
	c := &Conn{
		id:            id,
		cfg:           cfg,
		socket:        socket,
		logger:        logger.With("conn", id),
		metrics:       m,
		queue:         newSendQueue(cfg.SendBuffer),
		done:          make(chan struct{}),
		writeLoopDone: make(chan struct{}),
		alive:         true,
	}

	go c.writeLoop()

	return c
}

// ID returns the connection's unique ID.
func (c *Conn) ID() string {
	return c.id
}

// Logger returns the connection-scoped logger.
func (c *Conn) Logger() *slog.Logger {
	return c.logger
}

// Send encodes msg and queues it for writing.
func (c *Conn) Send(msg protocol.Outbound) error {
	data, err := protocol.Encode(msg, time.Now())
	if err != nil {
		return err
	}
	return c.Enqueue(Frame{Type: msg.Type(), Data: data})
}

// Enqueue queues an already encoded frame. It never blocks. Frames for a
// closed connection or a full queue are dropped with an error.
func (c *Conn) Enqueue(f Frame) error {
	if !c.IsOpen() {
		c.metrics.DroppedMessages.Inc()
		return ErrClosed
	}

	if err := c.queue.Push(f); err != nil {
		c.metrics.DroppedMessages.Inc()
		if errors.Is(err, ErrQueueFull) {
			c.logger.Warn("send queue full, dropping message",
				"type", f.Type,
				"limit", c.cfg.SendBuffer,
			)
		}
		return err
	}
	return nil
}

// Close stops the writer and closes the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.queue.Close()

	return c.socket.Close()
}

// Done is closed once Close has been called.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// IsOpen reports whether the connection still accepts frames.
func (c *Conn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// MarkAlive records a pong from the peer.
func (c *Conn) MarkAlive() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// IsAlive reports whether the peer answered since the last sweep.
func (c *Conn) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alive
}

// expireLiveness clears the alive flag for the next sweep and reports what it
// was. A false return means the peer missed the previous ping.
func (c *Conn) expireLiveness() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasAlive := c.alive
	c.alive = false
	return wasAlive
}

// Identity returns the bound identity, if any.
func (c *Conn) Identity() (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

// setIdentity replaces the bound identity and returns the previous one.
// Only the Registry calls it, under its own lock.
func (c *Conn) setIdentity(id Identity) (Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prev Identity
	had := c.identity != nil
	if had {
		prev = *c.identity
	}
	c.identity = &id
	return prev, had
}

// writeLoop drains the send queue onto the socket. Write errors are logged
// and counted; the connection is removed by its read loop or the heartbeat,
// not here.
func (c *Conn) writeLoop() {
	defer close(c.writeLoopDone)

	for {
		f, ok := c.queue.Pop()
		if !ok {
			return
		}

		select {
		case <-c.done:
			return
		default:
		}

		if err := c.write(f); err != nil {
			c.metrics.SendFailures.Inc()
			c.logger.Debug("failed to write message", "type", f.Type, "error", err)
			continue
		}
		c.metrics.MessagesSent.WithLabelValues(string(f.Type)).Inc()
	}
}

func (c *Conn) write(f Frame) error {
	if err := c.socket.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.socket.WriteMessage(websocket.TextMessage, f.Data)
}
