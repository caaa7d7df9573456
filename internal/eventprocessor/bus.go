// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/decorum/internal/metrics"
)

// BusConfig configures the in-process pub/sub.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber buffer size.
	OutputChannelBuffer int64
}

// Bus publishes session events on an in-process gochannel.
// Every subscriber of a topic receives its own copy of each message, in
// publish order: a publish returns only after every subscriber acked.
type Bus struct {
	pubsub     *gochannel.GoChannel
	serializer *Serializer
	logger     watermill.LoggerAdapter
	closed     atomic.Bool
	published  atomic.Int64

	// mu makes sequence order and publish order the same.
	mu  sync.Mutex
	seq uint64
}

// NewBus creates a bus. A nil logger uses the zerolog adapter.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewWatermillLogger()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputChannelBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		serializer: NewSerializer(),
		logger:     logger,
	}
}

// Publish stamps the next sequence number, serializes and publishes an
// event. Handlers must not publish on the bus synchronously.
func (b *Bus) Publish(ctx context.Context, ev *SessionEvent) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev.Seq = b.seq
	payload, err := b.serializer.Marshal(ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(ev.EventID, payload)
	msg.Metadata.Set("session_id", ev.SessionID)
	msg.Metadata.Set("type", ev.Type)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicSessionEvents, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	b.published.Add(1)
	metrics.RecordSceneEvent(ev.Type)
	return nil
}

// Emit publishes and logs failures instead of returning them. It is the
// sink used by scenes and controllers, which must never fail on delivery.
func (b *Bus) Emit(sessionID, source, eventType string, data interface{}) {
	ev, err := NewSessionEvent(sessionID, source, eventType, data)
	if err == nil {
		err = b.Publish(context.Background(), ev)
	}
	if err != nil && !errors.Is(err, ErrBusClosed) {
		b.logger.Error("Failed to publish session event", err, watermill.LogFields{
			"session_id": sessionID,
			"type":       eventType,
		})
	}
}

// Subscriber exposes the bus as a Watermill subscriber for the router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Published returns the number of events published.
func (b *Bus) Published() int64 {
	return b.published.Load()
}

// Close closes the underlying pub/sub.
func (b *Bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.pubsub.Close()
}
