package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/duynhne/content-service/internal/logger"
)

// KafkaPublisher writes events to a single topic with a sync producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewKafkaPublisher connects a sync producer to brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic), nil
}

// producerConfig sends each event once. Publishing runs on the request
// path, so a failed send is logged rather than retried.
func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 0
	cfg.Producer.Timeout = 2 * time.Second
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Metadata.Retry.Max = 0
	return cfg
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish sends one event keyed by key so events of one entity stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, data any) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: p.now().UTC(),
		Data:       data,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
		return
	}
	log.Debug().
		Str("event_type", eventType).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
