package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process pub/sub channel between the hosting application, the
// simulation pipeline and the stage components. Single-process only; there is
// no broker behind it.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false)),
	}
}

func (b *Bus) PublishNavigation(ev NavigationEvent) error {
	return b.publish(TopicNavigation, ev)
}

func (b *Bus) PublishStage(ev StageEvent) error {
	return b.publish(TopicStage, ev)
}

func (b *Bus) publish(topic string, ev interface{}) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe returns the raw message stream for a topic. Consumers unmarshal
// and ack; invalid payloads should be acked to avoid redelivery loops.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
