package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	w   MessageWriter
	now func() time.Time
}

// pinned sends every snapshot to the partition the consumer reads.
var pinned = kafka.BalancerFunc(func(kafka.Message, ...int) int {
	return snapshotPartition
})

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     pinned,
			RequiredAcks: kafka.RequireAll,
		},
		now: time.Now,
	}
}

// Publish sends snap as one message. A zero Version or UpdatedAt is filled
// from the clock.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	now := p.now().UTC()
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = now
	}
	if snap.Version == 0 {
		snap.Version = now.UnixNano()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte("catalog"),
		Value: data,
		Headers: []kafka.Header{
			{Key: "version", Value: []byte(strconv.FormatInt(snap.Version, 10))},
		},
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
