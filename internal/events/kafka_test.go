package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
)

type recordingProducer struct {
	sarama.SyncProducer
	sent []*sarama.ProducerMessage
	err  error
}

func (p *recordingProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if p.err != nil {
		return 0, 0, p.err
	}
	p.sent = append(p.sent, msg)
	return 0, int64(len(p.sent)), nil
}

func (p *recordingProducer) Close() error { return nil }

func TestKafkaPublisherEnvelope(t *testing.T) {
	prod := &recordingProducer{}
	pub := newKafkaPublisher(prod, "content.events")
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	pub.Publish(context.Background(), UserCreated, "7", map[string]any{"id": 7})

	if len(prod.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(prod.sent))
	}
	msg := prod.sent[0]
	if msg.Topic != "content.events" {
		t.Errorf("topic = %q", msg.Topic)
	}
	key, _ := msg.Key.Encode()
	if string(key) != "7" {
		t.Errorf("key = %q, want 7", key)
	}

	raw, _ := msg.Value.Encode()
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != UserCreated || !ev.OccurredAt.Equal(fixed) {
		t.Errorf("event = %+v", ev)
	}
}

func TestKafkaPublisherSwallowsErrors(t *testing.T) {
	pub := newKafkaPublisher(&recordingProducer{err: errors.New("broker down")}, "t")
	pub.Publish(context.Background(), PostDeleted, "1", nil)
}

func TestProducerConfigDoesNotRetry(t *testing.T) {
	cfg := producerConfig()
	if cfg.Producer.Retry.Max != 0 {
		t.Errorf("Producer.Retry.Max = %d, want 0", cfg.Producer.Retry.Max)
	}
	if cfg.Metadata.Retry.Max != 0 {
		t.Errorf("Metadata.Retry.Max = %d, want 0", cfg.Metadata.Retry.Max)
	}
	if !cfg.Producer.Return.Successes {
		t.Error("Producer.Return.Successes = false, sync producer requires true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
