package session

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Eviction reasons passed to RegistryOptions.OnEvict.
const (
	EvictCapacity = "capacity"
	EvictIdle     = "idle"
	EvictRemoved  = "removed"
	EvictClosed   = "closed"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// MaxSessions bounds the number of live sessions. When full, the least
	// recently used session is closed to make room. 0 means unlimited.
	MaxSessions int

	// IdleTimeout closes sessions without activity for this long during
	// Sweep. 0 disables idle expiry.
	IdleTimeout time.Duration

	// Session configures every session created by the registry.
	Session Options

	// OnEvict is called, without the registry lock held, after a session
	// leaves the registry.
	OnEvict func(id, reason string)

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Registry owns the live sessions of a server, sharing one base table.
//
// Sessions are kept in least-recently-used order; each one runs its own
// event loop goroutine until it is removed, evicted or the registry is
// closed.
//
// Example:
//
//	reg := session.NewRegistry(table, session.RegistryOptions{
//	    MaxSessions: 1000,
//	    IdleTimeout: 30 * time.Minute,
//	})
//	defer reg.Close()
//	go reg.Janitor(ctx, time.Minute)
//
//	s := reg.Create()
//	snap, err := s.Submit(ctx, session.ViewportChanged{Bounds: bounds})
type Registry struct {
	table    *burn.Table
	opts     RegistryOptions
	log      zerolog.Logger
	sessions map[string]*registryEntry
	lru      *list.List // most recent at front
	evicted  int
	mu       sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// registryEntry tracks a live session and its access metadata.
type registryEntry struct {
	session     *Session
	element     *list.Element
	cancel      context.CancelFunc
	accessCount int
}

// NewRegistry creates an empty registry over table.
func NewRegistry(table *burn.Table, opts RegistryOptions) *Registry {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = &log
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		table:    table,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*registryEntry),
		lru:      list.New(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create starts a new session with a random id.
//
// If the registry is full, least-recently-used sessions are closed first.
func (r *Registry) Create() *Session {
	s := New(uuid.NewString(), r.table, r.opts.Session)
	ctx, cancel := context.WithCancel(r.ctx)

	var evicted []*Session
	r.mu.Lock()
	if r.opts.MaxSessions > 0 {
		for len(r.sessions) >= r.opts.MaxSessions && r.lru.Len() > 0 {
			evicted = append(evicted, r.evictLRU())
		}
	}
	entry := &registryEntry{session: s, cancel: cancel, accessCount: 1}
	entry.element = r.lru.PushFront(entry)
	r.sessions[s.ID()] = entry
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = s.Run(ctx)
	}()

	for _, e := range evicted {
		r.notify(e.ID(), EvictCapacity)
	}
	r.log.Debug().Str("session", s.ID()).Msg("session created")
	return s
}

// Get returns the session with id and marks it as recently used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	entry.accessCount++
	entry.session.touch()
	r.lru.MoveToFront(entry.element)
	return entry.session, true
}

// Remove closes and removes the session with id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok {
		r.drop(entry)
	}
	r.mu.Unlock()

	if ok {
		r.notify(id, EvictRemoved)
	}
	return ok
}

// Sweep closes every session idle since before now minus IdleTimeout and
// returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-r.opts.IdleTimeout)

	var expired []string
	r.mu.Lock()
	for id, entry := range r.sessions {
		if entry.session.LastActive().Before(cutoff) {
			r.drop(entry)
			r.evicted++
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.notify(id, EvictIdle)
	}
	if len(expired) > 0 {
		r.log.Info().Int("expired", len(expired)).Msg("idle sessions closed")
	}
	return len(expired)
}

// Janitor runs Sweep every interval until ctx is cancelled.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Close closes every session and waits for their loops to stop.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id, entry := range r.sessions {
		r.drop(entry)
		ids = append(ids, id)
	}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()

	for _, id := range ids {
		r.notify(id, EvictClosed)
	}
}

// evictLRU removes the least recently used session.
// Must be called with r.mu locked.
func (r *Registry) evictLRU() *Session {
	elem := r.lru.Back()
	if elem == nil {
		return nil
	}
	entry := elem.Value.(*registryEntry)
	r.drop(entry)
	r.evicted++
	return entry.session
}

// drop closes entry and forgets it.
// Must be called with r.mu locked.
func (r *Registry) drop(entry *registryEntry) {
	r.lru.Remove(entry.element)
	delete(r.sessions, entry.session.ID())
	entry.session.Close()
	entry.cancel()
}

func (r *Registry) notify(id, reason string) {
	r.log.Debug().Str("session", id).Str("reason", reason).Msg("session closed")
	if r.opts.OnEvict != nil {
		r.opts.OnEvict(id, reason)
	}
}

// Stats returns registry statistics.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totalAccess := 0
	for _, entry := range r.sessions {
		totalAccess += entry.accessCount
	}

	return RegistryStats{
		Sessions:    len(r.sessions),
		MaxSessions: r.opts.MaxSessions,
		TotalAccess: totalAccess,
		Evicted:     r.evicted,
	}
}

// RegistryStats holds registry counters.
type RegistryStats struct {
	Sessions    int `json:"sessions"`     // Live sessions
	MaxSessions int `json:"max_sessions"` // Capacity, 0 for unlimited
	TotalAccess int `json:"total_access"` // Creates plus lookups of live sessions
	Evicted     int `json:"evicted"`      // Sessions closed for capacity or idleness
}
