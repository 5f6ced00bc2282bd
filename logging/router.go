package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to its sinks synchronously. Sink errors are
// reported on the fallback logger and never propagate to callers; the
// simulation must not stall on observability.
type Router struct {
	mu          sync.Mutex
	sinks       []NamedSink
	clock       Clock
	fallback    *log.Logger
	minSeverity Severity
	closed      bool

	eventsTotal  uint64
	droppedTotal uint64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, minSeverity Severity, sinks []NamedSink) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	return &Router{
		sinks:       sinks,
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		minSeverity: minSeverity,
	}
}

func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil {
		return
	}
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.droppedTotal++
		return
	}
	r.eventsTotal++
	for _, named := range r.sinks {
		if err := named.Sink.Write(event); err != nil {
			r.fallback.Printf("sink %s failed: %v", named.Name, err)
		}
	}
}

func (r *Router) Stats() RouterStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RouterStats{EventsTotal: r.eventsTotal, DroppedTotal: r.droppedTotal}
}

func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	for _, named := range r.sinks {
		if err := named.Sink.Close(ctx); err != nil {
			r.fallback.Printf("closing sink %s failed: %v", named.Name, err)
		}
	}
	return nil
}
