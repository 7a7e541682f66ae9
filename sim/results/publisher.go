package results

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher broadcasts completed runs to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec *RunRecord) error
	Close() error
}

// MemoryPublisher collects published records, mainly for tests.
type MemoryPublisher struct {
	mu   sync.Mutex
	recs []*RunRecord
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish implements Publisher.
func (p *MemoryPublisher) Publish(_ context.Context, rec *RunRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recs = append(p.recs, rec)
	return nil
}

// Published returns the records seen so far.
func (p *MemoryPublisher) Published() []*RunRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*RunRecord, len(p.recs))
	copy(out, p.recs)
	return out
}

// Close implements Publisher.
func (p *MemoryPublisher) Close() error { return nil }

// AMQPConfig describes the RabbitMQ connection for run publishing.
type AMQPConfig struct {
	URL     string
	Queue   string
	Durable bool
}

// AMQPPublisher publishes JSON run records to a RabbitMQ queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPPublisher dials RabbitMQ and declares the target queue.
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("amqp URL must not be empty")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "supply-sim.runs"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, cfg.Durable, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring amqp queue: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, rec *RunRecord) error {
	if p == nil || p.ch == nil {
		return fmt.Errorf("amqp publisher not initialized")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var (
	_ Publisher = (*MemoryPublisher)(nil)
	_ Publisher = (*AMQPPublisher)(nil)
)
