// Package events streams buyer history entries to Kafka once they are
// committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

// NopPublisher discards entries. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishHistory(context.Context, []buyer.HistoryEntry) error { return nil }

func (NopPublisher) Close() {}

// KafkaPublisher produces one record per history entry, keyed by buyer id so
// a buyer's entries stay ordered within a partition.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
}

// KafkaOptions configures NewKafkaPublisher.
type KafkaOptions struct {
	Brokers  []string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

func NewKafkaPublisher(ctx context.Context, opts KafkaOptions) (*KafkaPublisher, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(opts.Brokers...),
		kgo.DefaultProduceTopic(opts.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchMaxBytes(1 << 20),
	}
	if opts.ClientID != "" {
		kopts = append(kopts, kgo.ClientID(opts.ClientID))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka: ping %s: %w", strings.Join(opts.Brokers, ","), err)
	}

	return &KafkaPublisher{client: client, topic: opts.Topic, timeout: opts.Timeout}, nil
}

// Records converts entries into producer records.
func Records(entries []buyer.HistoryEntry) ([]*kgo.Record, error) {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		value, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode history entry %s: %w", e.ID, err)
		}
		records = append(records, &kgo.Record{
			Key:   []byte(e.BuyerID.String()),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "action", Value: []byte(e.Diff.Action)},
			},
			Timestamp: e.ChangedAt,
		})
	}
	return records, nil
}

// PublishHistory produces entries synchronously and returns the first error.
func (p *KafkaPublisher) PublishHistory(ctx context.Context, entries []buyer.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	records, err := Records(entries)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %d records to %s: %w", len(records), p.topic, err)
	}
	slog.Debug("published history", "topic", p.topic, "count", len(records))
	return nil
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		slog.Warn("kafka flush on close", "error", err)
	}
	p.client.Close()
}
