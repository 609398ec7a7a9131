package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sutura/pkg/domain"
)

// Sink receives events after local persistence. Implementations must be
// safe for concurrent use; failures are logged, never surfaced to the
// mutation path.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Publisher captures structured audit events. It is append-only and uses
// the store for persistence so tests can swap sinks easily. With an async
// buffer configured, Emit enqueues and a background goroutine drains.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	inbox chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSink attaches a downstream sink (e.g. Kafka) fed after the store.
func WithSink(sink Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// WithLogger sets the logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithAsyncBuffer switches Emit to enqueue into a buffered channel drained
// by a background goroutine, keeping audit off the request latency path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) { p.inbox = make(chan Event, size) }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event. In sync mode it persists before returning; in
// async mode it enqueues, falling back to synchronous persistence when the
// buffer is full so events are never dropped silently.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
		}
	}
	return p.persist(ctx, event)
}

// List returns the events recorded for one actor.
func (p *Publisher) List(ctx context.Context, actorID domain.ActorID) ([]Event, error) {
	return p.store.ListByActor(ctx, actorID)
}

// Close drains the async buffer and releases the sink.
func (p *Publisher) Close() error {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
	if p.sink != nil {
		return p.sink.Close()
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.persist(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event", "error", err, "action", event.Action)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			// Sink failures must not fail the mutation that emitted the event.
			p.logger.Error("audit sink publish failed", "error", err, "action", event.Action)
		}
	}
	return nil
}
