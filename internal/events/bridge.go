package events

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// ErrPublisherRequired is returned when a bridge is built without a publisher.
var ErrPublisherRequired = errors.New("events: publisher is required")

const defaultPublishTimeout = 5 * time.Second

// Subscriber is the part of the section store the bridge listens to.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan sections.ChangeEvent, error)
}

// Bridge forwards section change events to a Publisher.
type Bridge struct {
	source    Subscriber
	publisher Publisher
	logger    interfaces.Logger
	timeout   time.Duration
}

// BridgeOption customises a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(logger interfaces.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPublishTimeout bounds every Publish call.
func WithPublishTimeout(timeout time.Duration) BridgeOption {
	return func(b *Bridge) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// NewBridge wires source to publisher.
func NewBridge(source Subscriber, publisher Publisher, opts ...BridgeOption) (*Bridge, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	if source == nil {
		return nil, sections.ErrRepositoryRequired
	}
	b := &Bridge{
		source:    source,
		publisher: publisher,
		logger:    logging.NoOp(),
		timeout:   defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Start subscribes before returning, then forwards events on a goroutine
// until ctx ends. The returned channel is closed when forwarding stops.
// Publish failures are logged and never reach the writer.
func (b *Bridge) Start(ctx context.Context) (<-chan struct{}, error) {
	stream, err := b.source.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-stream:
				if !ok {
					return
				}
				b.forward(ctx, evt)
			}
		}
	}()
	return done, nil
}

// Run is Start followed by waiting for ctx to end.
func (b *Bridge) Run(ctx context.Context) error {
	done, err := b.Start(ctx)
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (b *Bridge) forward(ctx context.Context, evt sections.ChangeEvent) {
	topic := TopicFor(evt.Type)
	publishCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	logger := logging.WithSection(b.logger, evt.Section.Page, evt.Section.Key)
	if err := b.publisher.Publish(publishCtx, topic, NewSectionChanged(evt)); err != nil {
		logger.WithContext(ctx).Error("events.publish.failed", "topic", topic, "error", err)
		return
	}
	logger.WithContext(ctx).Debug("events.published", "topic", topic)
}
