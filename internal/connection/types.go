package connection

import (
	"errors"
	"time"

	"github.com/bell24h/realtime/internal/model"
	"github.com/bell24h/realtime/internal/protocol"
)

// Errors
var (
	ErrClosed             = errors.New("connection closed")
	ErrQueueFull          = errors.New("send queue full")
	ErrNotRegistered      = errors.New("connection not registered")
	ErrAlreadyBound       = errors.New("connection already bound to a different identity")
	ErrTooManyConnections = errors.New("too many connections")
)

// Socket is the transport side of a connection.
// *websocket.Conn satisfies it.
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Frame is an encoded envelope waiting to be written.
type Frame struct {
	Type protocol.MessageType // For metrics and logs
	Data []byte               // Encoded envelope
}

// Identity is the user a connection asserted on authenticate.
type Identity struct {
	UserID int64
	Role   model.Role
}

// ConnConfig configures a single connection.
type ConnConfig struct {
	SendBuffer   int           // Max queued frames before new frames are dropped
	WriteTimeout time.Duration // Write deadline per frame
}

// DefaultConnConfig returns sensible defaults.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		SendBuffer:   256,
		WriteTimeout: 5 * time.Second,
	}
}

// RegistryConfig configures the Registry.
type RegistryConfig struct {
	MaxConnections int  // 0 = unlimited
	AllowRebind    bool // Allow authenticate to replace an existing identity
}

// DefaultRegistryConfig returns sensible defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MaxConnections: 0,
		AllowRebind:    true,
	}
}

// RegistryStats summarizes the live connection set.
type RegistryStats struct {
	Total         int                `json:"total"`
	Authenticated int                `json:"authenticated"`
	ByRole        map[model.Role]int `json:"by_role"`
}

// DefaultHeartbeatInterval is the time between liveness sweeps.
const DefaultHeartbeatInterval = 30 * time.Second

// SweepResult reports what one heartbeat sweep did.
type SweepResult struct {
	Pinged  int
	Evicted int
}
