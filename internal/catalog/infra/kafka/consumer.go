// Package kafka moves catalog snapshots over a Kafka topic. Every message
// carries a complete JSON snapshot.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/dwikikusuma/foodstore/pkg/retry"
	"github.com/segmentio/kafka-go"
)

// SnapshotSink receives decoded snapshots. Apply rejects invalid ones.
type SnapshotSink interface {
	Apply(ctx context.Context, snap domain.Snapshot) error
	Fail(err error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type ConsumerConfig struct {
	Brokers    []string
	Topic      string
	Backoff    time.Duration
	BackoffCap time.Duration
}

// snapshotPartition carries every snapshot. The publisher pins writes to it
// so a reader sees the whole history in order.
const snapshotPartition = 0

// Consumer reads the snapshot partition without a consumer group: nothing
// is committed, every gateway instance sees every snapshot, and a restart
// begins at the newest one.
type Consumer struct {
	sink      SnapshotSink
	log       *slog.Logger
	newReader func(offset int64) (MessageReader, error)
	// newest returns the offset of the newest stored snapshot, or the
	// first offset when the partition is empty.
	newest  func(ctx context.Context) (int64, error)
	backoff *retry.Backoff

	// next is the offset to continue from after a reconnect, -1 until a
	// message has been read.
	next int64
}

func NewConsumer(cfg ConsumerConfig, sink SnapshotSink, log *slog.Logger) *Consumer {
	return &Consumer{
		sink: sink,
		log:  log,
		newReader: func(offset int64) (MessageReader, error) {
			r := kafka.NewReader(readerConfig(cfg))
			if err := r.SetOffset(offset); err != nil {
				r.Close()
				return nil, err
			}
			return r, nil
		},
		newest:  newestOffset(cfg),
		backoff: retry.NewBackoff(cfg.Backoff, cfg.BackoffCap, true),
		next:    -1,
	}
}

func readerConfig(cfg ConsumerConfig) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:   cfg.Brokers,
		Topic:     cfg.Topic,
		Partition: snapshotPartition,
		MaxBytes:  10 << 20,
	}
}

func newestOffset(cfg ConsumerConfig) func(ctx context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		var lastErr error
		for _, broker := range cfg.Brokers {
			conn, err := kafka.DialLeader(ctx, "tcp", broker, cfg.Topic, snapshotPartition)
			if err != nil {
				lastErr = err
				continue
			}
			first, last, err := conn.ReadOffsets()
			conn.Close()
			if err != nil {
				return 0, fmt.Errorf("read offsets: %w", err)
			}
			return startOffset(first, last), nil
		}
		return 0, fmt.Errorf("dial partition leader: %w", lastErr)
	}
}

// startOffset picks the newest message in [first, last). last is the offset
// the next write will get.
func startOffset(first, last int64) int64 {
	if last > first {
		return last - 1
	}
	return first
}

// Run consumes until ctx is done. Read failures reopen the reader with
// backoff; the sink keeps its last good snapshot meanwhile.
func (c *Consumer) Run(ctx context.Context) error {
	err := retry.Do(ctx, retry.Policy{MaxRetries: -1, Backoff: c.backoff}, func() error {
		return c.consume(ctx)
	}, func(err error, attempt int, wait time.Duration) {
		c.sink.Fail(err)
		c.log.Warn("catalog feed interrupted",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("err", err),
		)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) consume(ctx context.Context) error {
	offset := c.next
	if offset < 0 {
		newest, err := c.newest(ctx)
		if err != nil {
			return fmt.Errorf("locate newest snapshot: %w", err)
		}
		offset = newest
	}

	r, err := c.newReader(offset)
	if err != nil {
		return fmt.Errorf("open reader at %d: %w", offset, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			c.log.Warn("kafka reader close", slog.Any("err", err))
		}
	}()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		c.next = m.Offset + 1
		c.handle(ctx, m)
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var snap domain.Snapshot
	if err := json.Unmarshal(m.Value, &snap); err != nil {
		c.log.Warn("skipping malformed catalog message",
			slog.Int64("offset", m.Offset),
			slog.Any("err", err),
		)
		return
	}

	if err := c.sink.Apply(ctx, snap); err != nil {
		c.log.Warn("skipping invalid catalog snapshot",
			slog.Int64("offset", m.Offset),
			slog.Any("err", err),
		)
		return
	}

	c.log.Info("catalog snapshot applied",
		slog.Int64("offset", m.Offset),
		slog.Int64("version", snap.Version),
		slog.Int("foods", len(snap.Foods)),
	)
}
