package chat

import (
	"context"
	"strconv"
	"time"

	"auditlink_chat/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker routes send envelopes through a Kafka topic. Acks and
// broadcasts still happen on the instance holding the websocket; an
// envelope consumed on an instance without the sender's connection is
// dropped there and handled where the connection lives.
type KafkaBroker struct {
	hub      *Hub
	producer *kafka.Writer
	consumer *kafka.Reader
	cancel   context.CancelFunc
}

func NewKafkaBroker(hub *Hub) *KafkaBroker {
	kafkaConfig := config.GetConfig().KafkaConfig
	return &KafkaBroker{
		hub: hub,
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaConfig.HostPort),
			Topic:                  kafkaConfig.ChatTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           kafkaConfig.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: false,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{kafkaConfig.HostPort},
			Topic:          kafkaConfig.ChatTopic,
			CommitInterval: kafkaConfig.Timeout * time.Second,
			GroupID:        "auditlink_chat",
			StartOffset:    kafka.LastOffset,
		}),
	}
}

func (b *KafkaBroker) Publish(ctx context.Context, msg []byte) error {
	key := []byte(strconv.Itoa(config.GetConfig().KafkaConfig.Partition))
	return b.producer.WriteMessages(ctx, kafka.Message{Key: key, Value: msg})
}

func (b *KafkaBroker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go func() {
		for {
			m, err := b.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Error("kafka read", zap.Error(err))
				continue
			}
			b.hub.Dispatch(m.Value)
		}
	}()

	b.hub.Run()
}

func (b *KafkaBroker) Close() {
	if b.cancel != nil {
		b.cancel()
	}
	if err := b.producer.Close(); err != nil {
		zap.L().Error("kafka producer close", zap.Error(err))
	}
	if err := b.consumer.Close(); err != nil {
		zap.L().Error("kafka consumer close", zap.Error(err))
	}
	b.hub.Close()
}
