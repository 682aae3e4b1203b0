package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventMovePlayed    = "move_played"
	EventMatchFinished = "match_finished"
)

// Event is the envelope of every message on the topic.
type Event struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

// NewProducer returns nil when brokers or topic are missing; a nil
// Producer drops everything it is given.
func NewProducer(brokers []string, topic string, logger *zap.SugaredLogger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Producer{logger: logger.With("topic", topic)}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		// matches must not wait on the broker
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Warnw("kafka publish failed", "messages", len(messages), zap.Error(err))
			}
		},
	}
	return p
}

// Publish sends one event keyed by key, so a match's events stay ordered
// within a partition.
func (p *Producer) Publish(ctx context.Context, key, event string, payload any) {
	if p == nil || p.writer == nil {
		return
	}
	data, err := encode(event, payload, time.Now().UTC())
	if err != nil {
		p.logger.Errorw("encode event", "event", event, zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		p.logger.Warnw("kafka publish failed", "event", event, zap.Error(err))
	}
}

func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Warnw("closing kafka writer", zap.Error(err))
	}
}

func encode(event string, payload any, ts time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: event, Payload: raw, Timestamp: ts})
}

// Decode parses one message value.
func Decode(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
