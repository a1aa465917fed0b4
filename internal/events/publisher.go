package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of every published event.
type Envelope struct {
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher encodes domain events and hands them to a Sink under
// prefix+topic.
type Publisher struct {
	sink   Sink
	prefix string
	now    func() time.Time
}

func NewPublisher(sink Sink, topicPrefix string) *Publisher {
	return &Publisher{sink: sink, prefix: topicPrefix, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, topic, name string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", name, err)
	}
	msg, err := json.Marshal(Envelope{
		Event:     name,
		Timestamp: p.now().Unix(),
		Payload:   body,
	})
	if err != nil {
		return err
	}
	return p.sink.WriteMessage(p.prefix+topic, msg)
}

func (p *Publisher) Close() error {
	return p.sink.Close()
}
