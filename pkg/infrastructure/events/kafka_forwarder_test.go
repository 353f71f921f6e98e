package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/vsinha/sop/pkg/domain/entities"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaForwarder_Handle(t *testing.T) {
	writer := &fakeWriter{}
	forwarder := newKafkaForwarderWithWriter(KafkaConfig{Topic: "sop.scenarios"}, writer, zerolog.Nop())

	key := entities.ScenarioKey("Standard Series-2024-01")
	event := NewDemandSavedEvent(key, []entities.DemandForecast{{Month: "Jan N", Value: 45000, BackOrder: 5000}})

	if err := forwarder.Handle(event); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(writer.messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(writer.messages))
	}

	msg := writer.messages[0]
	if string(msg.Key) != string(key) {
		t.Errorf("Expected key %s, got %s", key, msg.Key)
	}

	var decoded struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Key    string                    `json:"key"`
			Series []entities.DemandForecast `json:"series"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if decoded.Type != DemandSavedEvent || decoded.ID != event.ID() {
		t.Errorf("Unexpected envelope: %+v", decoded)
	}
	if len(decoded.Data.Series) != 1 || decoded.Data.Series[0].BackOrder != 5000 {
		t.Errorf("Unexpected payload: %+v", decoded.Data)
	}
}

func TestKafkaForwarder_CanHandle(t *testing.T) {
	forwarder := newKafkaForwarderWithWriter(KafkaConfig{Topic: "t"}, &fakeWriter{}, zerolog.Nop())

	if !forwarder.CanHandle(DemandSavedEvent) || !forwarder.CanHandle(ConfigsSavedEvent) {
		t.Error("Expected saved-scenario events to be forwarded")
	}
	if forwarder.CanHandle(MonthAdjustedEvent) {
		t.Error("Expected working-copy adjustments not to be forwarded")
	}
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	forwarder := newKafkaForwarderWithWriter(KafkaConfig{Topic: "t"}, writer, zerolog.Nop())

	err := forwarder.Handle(NewConfigsSavedEvent("k", nil))
	if err == nil || !strings.Contains(err.Error(), "broker down") {
		t.Errorf("Expected wrapped broker error, got %v", err)
	}

	_ = forwarder.Close()
	if !writer.closed {
		t.Error("Expected writer to be closed")
	}
}

func TestNewKafkaForwarder_Validation(t *testing.T) {
	if _, err := NewKafkaForwarder(KafkaConfig{Brokers: []string{"localhost:9092"}}, zerolog.Nop()); err == nil {
		t.Error("Expected error for empty topic")
	}
	if _, err := NewKafkaForwarder(KafkaConfig{Topic: "t"}, zerolog.Nop()); err == nil {
		t.Error("Expected error for missing brokers")
	}
}
