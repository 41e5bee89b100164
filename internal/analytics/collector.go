// Package analytics tracks what the platform is asked and how it answers:
// search and record events are buffered in-process, published to Kafka, and
// folded into aggregate statistics on the consuming side.
package analytics

import (
	"context"
	"log/slog"

	"github.com/recorddex/recorddex/pkg/kafka"
)

// Collector buffers analytics events and publishes them to Kafka without
// blocking the request path. Events are dropped, with a warning, when the
// buffer is full.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It drains the buffer on ctx cancellation.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				if err := c.producer.Publish(ctx, kafka.Event{
					Key:   "analytics",
					Value: event,
				}); err != nil {
					c.logger.Error("failed to publish analytics event", "error", err)
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event; it never blocks the caller.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops the publish loop after the buffer empties.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if err := c.producer.Publish(context.Background(), kafka.Event{
				Key:   "analytics",
				Value: event,
			}); err != nil {
				c.logger.Error("failed to publish remaining event", "error", err)
			}
		default:
			return
		}
	}
}
