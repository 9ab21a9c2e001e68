package chat

import (
	"context"
)

// MessageBroker decouples message intake from room processing. The
// channel implementation routes in-process; the Kafka implementation
// routes through a topic so multiple instances can share load.
type MessageBroker interface {
	// Publish hands one send envelope to the broker.
	Publish(ctx context.Context, msg []byte) error
	// Start blocks running the consume/room loop until Close.
	Start()
	// Close releases broker resources and stops Start.
	Close()
}

// ChannelBroker is the standalone, single-instance broker: Publish
// feeds the hub directly.
type ChannelBroker struct {
	hub *Hub
}

func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{hub: hub}
}

func (b *ChannelBroker) Publish(ctx context.Context, msg []byte) error {
	b.hub.Dispatch(msg)
	return nil
}

func (b *ChannelBroker) Start() {
	b.hub.Run()
}

func (b *ChannelBroker) Close() {
	b.hub.Close()
}
