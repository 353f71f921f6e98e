package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const defaultKafkaWriteTimeout = 5 * time.Second

// KafkaConfig holds the options of the saved-scenario forwarder
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder is an EventHandler that copies saved-scenario events to a
// Kafka topic, keyed by scenario key. Delivery failures are logged by the
// event store and never reach the planner.
type KafkaForwarder struct {
	cfg    KafkaConfig
	writer kafkaMessageWriter
	logger zerolog.Logger
}

// NewKafkaForwarder creates a forwarder backed by a kafka-go writer
func NewKafkaForwarder(cfg KafkaConfig, logger zerolog.Logger) (*KafkaForwarder, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	return newKafkaForwarderWithWriter(cfg, writer, logger), nil
}

func newKafkaForwarderWithWriter(cfg KafkaConfig, writer kafkaMessageWriter, logger zerolog.Logger) *KafkaForwarder {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultKafkaWriteTimeout
	}
	return &KafkaForwarder{
		cfg:    cfg,
		writer: writer,
		logger: logger.With().Str("component", "kafka_forwarder").Logger(),
	}
}

// CanHandle reports whether the event type changes the authoritative cache
func (f *KafkaForwarder) CanHandle(eventType string) bool {
	for _, t := range SavedScenarioEvents {
		if t == eventType {
			return true
		}
	}
	return false
}

// Handle encodes the event as JSON and writes it to the topic
func (f *KafkaForwarder) Handle(event Event) error {
	value, err := json.Marshal(BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       event.StreamID(),
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: event.Version(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.WriteTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.StreamID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID(), f.cfg.Topic, err)
	}

	f.logger.Debug().Str("event_type", event.Type()).Str("key", event.StreamID()).Msg("scenario event forwarded")
	return nil
}

// Close releases the underlying writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
