// Package session tracks the per-view interaction state of a burned-area map:
// the last clicked point, the selected feature and the aggregate of the
// visible viewport.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/rs/zerolog"
)

// ErrClosed is returned when an event is sent to a closed session.
var ErrClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	// ValueField is summed per group on every viewport change.
	// Default: burn.DefaultValueField
	ValueField string

	// GroupField groups the viewport aggregate.
	// Default: burn.DefaultGroupField
	GroupField string

	// QueueSize is the number of events that can wait for the event loop.
	// Default: 64
	QueueSize int

	// ResolveClicks looks up the feature under a click that carries
	// coordinates but no feature payload.
	ResolveClicks bool

	// Hooks are called from the event loop after each event is applied.
	Hooks Hooks

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Hooks observe applied events, typically to record metrics.
type Hooks struct {
	Viewport func(elapsed time.Duration, visible int)
	Click    func(selected bool)
}

// DefaultOptions returns session options with defaults.
func DefaultOptions() Options {
	return Options{
		ValueField: burn.DefaultValueField,
		GroupField: burn.DefaultGroupField,
		QueueSize:  64,
	}
}

func (o Options) withDefaults() Options {
	if o.ValueField == "" {
		o.ValueField = burn.DefaultValueField
	}
	if o.GroupField == "" {
		o.GroupField = burn.DefaultGroupField
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Session holds the selection and viewport state of one map view.
//
// Events are applied one at a time, either by the loop started with Run or
// synchronously with Apply. Each event is numbered when it is sent; an event
// older than the last applied event of the same kind is dropped, so the
// published state always reflects the latest event of each kind.
//
// The base table is shared and never modified.
type Session struct {
	id    string
	table *burn.Table
	opts  Options
	log   zerolog.Logger

	events chan envelope
	seq    atomic.Uint64
	snap   atomic.Pointer[Snapshot]
	active atomic.Int64

	mu        sync.Mutex // serializes apply
	done      chan struct{}
	closeOnce sync.Once
}

type envelope struct {
	seq    uint64
	event  Event
	result chan *Snapshot
}

// New creates a session over table.
func New(id string, table *burn.Table, opts Options) *Session {
	opts = opts.withDefaults()
	if table == nil {
		table = burn.EmptyTable()
	}
	s := &Session{
		id:     id,
		table:  table,
		opts:   opts,
		log:    opts.Logger.With().Str("session", id).Logger(),
		events: make(chan envelope, opts.QueueSize),
		done:   make(chan struct{}),
	}
	s.snap.Store(initialSnapshot(id))
	s.touch()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the latest published state. It never blocks.
func (s *Session) Snapshot() *Snapshot { return s.snap.Load() }

// LastActive returns the time of the last event or access.
func (s *Session) LastActive() time.Time { return time.Unix(0, s.active.Load()) }

func (s *Session) touch() { s.active.Store(time.Now().UnixNano()) }

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the event loop. Pending events are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Run applies queued events until ctx is cancelled or the session is closed.
func (s *Session) Run(ctx context.Context) error {
	s.log.Debug().Msg("session loop started")
	defer s.log.Debug().Msg("session loop stopped")

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		case <-s.done:
			return nil
		case env := <-s.events:
			snap := s.apply(env.seq, env.event)
			if env.result != nil {
				env.result <- snap
			}
		}
	}
}

// Dispatch queues ev for the event loop without waiting for it to be applied.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	return s.enqueue(ctx, envelope{event: ev})
}

// Submit queues ev and waits for the snapshot it produced.
func (s *Session) Submit(ctx context.Context, ev Event) (*Snapshot, error) {
	env := envelope{event: ev, result: make(chan *Snapshot, 1)}
	if err := s.enqueue(ctx, env); err != nil {
		return nil, err
	}
	select {
	case snap := <-env.result:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrClosed
	}
}

func (s *Session) enqueue(ctx context.Context, env envelope) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.touch()
	env.seq = s.seq.Add(1)
	select {
	case s.events <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// Apply numbers ev and applies it immediately, for callers that already
// process events one at a time.
func (s *Session) Apply(ev Event) (*Snapshot, error) {
	select {
	case <-s.done:
		return nil, ErrClosed
	default:
	}
	s.touch()
	return s.apply(s.seq.Add(1), ev), nil
}

func (s *Session) apply(seq uint64, ev Event) *Snapshot {
	switch e := ev.(type) {
	case *ViewportChanged:
		if e != nil {
			ev = *e
		}
	case *FeatureClicked:
		if e != nil {
			ev = *e
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	var next *Snapshot
	switch e := ev.(type) {
	case ViewportChanged:
		if seq <= cur.ViewportSeq {
			s.log.Debug().Uint64("seq", seq).Msg("stale viewport dropped")
			return cur
		}
		next = s.applyViewport(cur, seq, e)
	case FeatureClicked:
		if seq <= cur.ClickSeq {
			s.log.Debug().Uint64("seq", seq).Msg("stale click dropped")
			return cur
		}
		next = s.applyClick(cur, seq, e)
	default:
		s.log.Warn().Msgf("unsupported event %T", ev)
		return cur
	}

	s.snap.Store(next)
	return next
}

func (s *Session) applyViewport(cur *Snapshot, seq uint64, ev ViewportChanged) *Snapshot {
	start := time.Now()

	next := cur.clone()
	next.ViewportSeq = seq
	next.Viewport = ev.Bounds.Viewport()
	next.visible = burn.Filter(s.table, next.Viewport)
	next.Summary = burn.Summarize(next.visible, s.opts.ValueField, s.opts.GroupField)
	if next.Rows == nil {
		next.Rows = []burn.Row{}
	}
	next.TotalText = FormatArea(next.Total)

	elapsed := time.Since(start)
	s.log.Debug().
		Uint64("seq", seq).
		Int("visible", next.Count).
		Float64("total_area", next.Total).
		Dur("elapsed", elapsed).
		Msg("viewport applied")

	if s.opts.Hooks.Viewport != nil {
		s.opts.Hooks.Viewport(elapsed, next.Count)
	}
	return next
}

func (s *Session) applyClick(cur *Snapshot, seq uint64, ev FeatureClicked) *Snapshot {
	next := cur.clone()
	next.ClickSeq = seq

	if ev.Point.Complete() {
		p := ev.Point.Point()
		next.Point = &p
	}

	var props map[string]interface{}
	if ev.Feature != nil && ev.Feature.Props != nil {
		props = ev.Feature.Props
	} else if s.opts.ResolveClicks && ev.Point.Complete() {
		if f, ok := s.table.At(ev.Point.Lng, ev.Point.Lat); ok {
			props = f.Attributes()
		}
	}

	if props != nil {
		next.Selected = true
		next.Attributes = copyProps(props)
		next.Message = ""
	} else {
		next.Selected = false
		next.Attributes = nil
		next.Message = NothingSelected
	}

	s.log.Debug().
		Uint64("seq", seq).
		Bool("selected", next.Selected).
		Bool("has_point", next.Point != nil).
		Msg("click applied")

	if s.opts.Hooks.Click != nil {
		s.opts.Hooks.Click(next.Selected)
	}
	return next
}

func copyProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
