package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/expensetracker/internal/domain"
)

// ErrQueueFull is returned by EventPublisher.Publish when the buffer is full.
var ErrQueueFull = errors.New("event queue full")

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.ChangeEvent) error
}

// EventPublisher buffers change events and delivers them to a Publisher
// from a single background worker, so slow brokers never block mutations.
type EventPublisher struct {
	publisher Publisher
	logger    zerolog.Logger
	queue     chan *domain.ChangeEvent
	timeout   time.Duration
}

// Config for EventPublisher.
type Config struct {
	Publisher  Publisher
	Logger     *zerolog.Logger
	BufferSize int           // Number of events held while the sink is busy
	Timeout    time.Duration // Per-event publish timeout
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &EventPublisher{
		publisher: cfg.Publisher,
		logger:    logger,
		queue:     make(chan *domain.ChangeEvent, cfg.BufferSize),
		timeout:   cfg.Timeout,
	}
}

// Publish enqueues event for delivery. It never blocks.
func (ep *EventPublisher) Publish(_ context.Context, event *domain.ChangeEvent) error {
	select {
	case ep.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled, then flushes
// whatever is still queued.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().Int("buffer", cap(ep.queue)).Msg("event publisher started")

	for {
		select {
		case <-ctx.Done():
			ep.drain()
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case event := <-ep.queue:
			ep.publishEvent(context.Background(), event)
		}
	}
}

func (ep *EventPublisher) drain() {
	for {
		select {
		case event := <-ep.queue:
			ep.publishEvent(context.Background(), event)
		default:
			return
		}
	}
}

// publishEvent publishes a single event. Failures are logged and dropped.
func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.ChangeEvent) {
	ctx, cancel := context.WithTimeout(ctx, ep.timeout)
	defer cancel()

	if err := ep.publisher.Publish(ctx, event); err != nil {
		ep.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("kind", event.Kind).
			Msg("failed to publish event")
		return
	}

	ep.logger.Debug().
		Str("event_id", event.ID).
		Str("kind", event.Kind).
		Msg("event published")
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.ChangeEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("kind", event.Kind).
		Int64("entry_id", event.EntryID).
		Time("occurred_at", event.OccurredAt).
		Msg("EVENT PUBLISHED")

	return nil
}

func encode(event *domain.ChangeEvent) ([]byte, error) {
	return json.Marshal(event)
}
