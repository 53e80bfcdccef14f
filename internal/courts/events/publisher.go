package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"courts/pkg/kafka"
	"courts/pkg/logger"
	"courts/pkg/middleware"
	"courts/pkg/model"
)

const (
	EventTypeSlotReserved = "court.slot.reserved"
	SchemaVersion         = "1"

	defaultQueueSize = 256
)

var ErrQueueFull = errors.New("event queue is full")

// Publisher announces committed reservations. Implementations must not block
// the request path on broker availability.
type Publisher interface {
	PublishReserved(ctx context.Context, event model.ReservationEvent) error
	Close(ctx context.Context) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishReserved(context.Context, model.ReservationEvent) error { return nil }
func (NoopPublisher) Close(context.Context) error                                  { return nil }

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type job struct {
	msg kafka.Message
}

// KafkaPublisher hands events to a background worker through a bounded queue.
type KafkaPublisher struct {
	producer       MessagePublisher
	source         string
	publishTimeout time.Duration
	log            *logger.Logger

	queue     chan job
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewKafkaPublisher(producer MessagePublisher, source string, publishTimeout time.Duration, log *logger.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		producer:       producer,
		source:         source,
		publishTimeout: publishTimeout,
		log:            log.Named("events"),
		queue:          make(chan job, defaultQueueSize),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

func (p *KafkaPublisher) PublishReserved(ctx context.Context, event model.ReservationEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Date + "|" + event.TimeSlot).
		WithEventType(EventTypeSlotReserved).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithValue(event).
		Build()
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return kafka.ErrProducerClosed
	}

	select {
	case p.queue <- job{msg: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *KafkaPublisher) run() {
	defer p.wg.Done()

	for j := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
		if err := p.producer.Publish(ctx, j.msg); err != nil {
			p.log.Error("Failed to publish reservation event",
				"event_id", j.msg.GetEventID(),
				"key", j.msg.Key,
				"error", err,
			)
		}
		cancel()
	}
}

// Close stops accepting events, drains the queue until ctx expires, then closes the producer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		drained := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-ctx.Done():
			p.log.Warn("Event queue not drained before shutdown", "pending", len(p.queue))
		}

		err = p.producer.Close()
	})
	return err
}
