// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"sync"

	"github.com/luxfi/pubsub"
)

var (
	_ Sink = (*Buffer)(nil)
	_ Sink = NopSink{}
	_ Sink = (*ServerSink)(nil)
)

// Sink receives events from the sale components.
type Sink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// Buffer collects events during an operation so they can be released only
// after the operation commits, or dropped if it aborts. Spurious
// notifications for rolled-back effects must never reach subscribers.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

func (b *Buffer) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

// Flush forwards all buffered events to out, in order, and empties the
// buffer.
func (b *Buffer) Flush(out Sink) {
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()

	for _, ev := range pending {
		out.Publish(ev)
	}
}

// Drop empties the buffer without forwarding.
func (b *Buffer) Drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// ServerSink publishes events to a pubsub server for address-filtered
// subscription.
type ServerSink struct {
	server *pubsub.Server
}

func NewServerSink(server *pubsub.Server) *ServerSink {
	return &ServerSink{server: server}
}

func (s *ServerSink) Publish(ev Event) {
	s.server.Publish(NewFilterer(ev))
}
