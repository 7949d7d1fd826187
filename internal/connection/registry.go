package connection

import (
	"log/slog"
	"sync"

	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/model"
)

// Registry is the authoritative set of live connections.
// All methods are safe for concurrent use.
type Registry struct {
	cfg     RegistryConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu            sync.RWMutex
	conns         map[string]*Conn           // conn ID → conn
	byUser        map[int64]map[string]*Conn // user ID → bound conns
	authenticated int
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig, logger *slog.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &Registry{
		cfg:     cfg,
		logger:  logger.With("component", "registry"),
		metrics: m,
		conns:   make(map[string]*Conn),
		byUser:  make(map[int64]map[string]*Conn),
	}
}

// Register adds c to the live set. Registering the same connection twice is
// a no-op. Returns ErrTooManyConnections when the configured cap is reached.
func (r *Registry) Register(c *Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, has := r.conns[c.id]; has {
		r.logger.Warn("duplicate register ignored", "conn", c.id)
		return nil
	}
	if r.cfg.MaxConnections > 0 && len(r.conns) >= r.cfg.MaxConnections {
		return ErrTooManyConnections
	}

	r.conns[c.id] = c
	if id, bound := c.Identity(); bound {
		r.index(c, id.UserID)
		r.authenticated++
	}
	r.updateGauges()

	r.logger.Debug("connection registered", "conn", c.id, "total", len(r.conns))
	return nil
}

// Bind stores identity on a registered connection. Returns ErrNotRegistered
// (and changes nothing) when c is not in the live set, and ErrAlreadyBound
// when rebinding is disabled and c already carries a different identity.
func (r *Registry) Bind(c *Conn, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, has := r.conns[c.id]; !has {
		return ErrNotRegistered
	}

	if current, bound := c.Identity(); bound {
		if current == id {
			return nil
		}
		if !r.cfg.AllowRebind {
			return ErrAlreadyBound
		}
	}

	prev, had := c.setIdentity(id)
	if had {
		r.unindex(c, prev.UserID)
		r.logger.Info("connection identity replaced",
			"conn", c.id,
			"old_user_id", prev.UserID,
			"old_role", prev.Role,
			"user_id", id.UserID,
			"role", id.Role,
		)
	} else {
		r.authenticated++
	}
	r.index(c, id.UserID)
	r.updateGauges()

	return nil
}

// Unregister removes c from the live set. Returns false when c was not
// registered, so repeated calls are harmless.
func (r *Registry) Unregister(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, has := r.conns[c.id]; !has {
		return false
	}

	delete(r.conns, c.id)
	if id, bound := c.Identity(); bound {
		r.unindex(c, id.UserID)
		r.authenticated--
	}
	r.updateGauges()

	r.logger.Debug("connection unregistered", "conn", c.id, "total", len(r.conns))
	return true
}

// Has reports whether c is in the live set.
func (r *Registry) Has(c *Conn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, has := r.conns[c.id]
	return has
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Full reports whether the configured connection cap has been reached.
func (r *Registry) Full() bool {
	if r.cfg.MaxConnections <= 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns) >= r.cfg.MaxConnections
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		result = append(result, c)
	}
	return result
}

// ForUsers returns the live connections bound to any of userIDs.
// Duplicate IDs select each connection once.
func (r *Registry) ForUsers(userIDs ...int64) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{}, len(userIDs))
	var result []*Conn
	for _, userID := range userIDs {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		for _, c := range r.byUser[userID] {
			result = append(result, c)
		}
	}
	return result
}

// ForRole returns the live connections bound with role.
func (r *Registry) ForRole(role model.Role) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Conn
	for _, c := range r.conns {
		if id, bound := c.Identity(); bound && id.Role == role {
			result = append(result, c)
		}
	}
	return result
}

// Stats returns a summary of the live set.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		Total:         len(r.conns),
		Authenticated: r.authenticated,
		ByRole:        make(map[model.Role]int),
	}
	for _, c := range r.conns {
		if id, bound := c.Identity(); bound {
			stats.ByRole[id.Role]++
		}
	}
	return stats
}

// index adds c under userID. Must be called with lock held.
func (r *Registry) index(c *Conn, userID int64) {
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]*Conn)
		r.byUser[userID] = set
	}
	set[c.id] = c
}

// unindex removes c from userID. Must be called with lock held.
func (r *Registry) unindex(c *Conn, userID int64) {
	set, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(set, c.id)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

// updateGauges must be called with lock held.
func (r *Registry) updateGauges() {
	r.metrics.Connections.Set(float64(len(r.conns)))
	r.metrics.AuthenticatedConnections.Set(float64(r.authenticated))
}
