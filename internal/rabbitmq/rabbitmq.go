package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker publishes and consumes JSON messages on durable queues through the
// default exchange. The queue name plays the role of a Kafka topic.
type Broker struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	mu       sync.Mutex
	declared map[string]struct{}
}

func Dial(url string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Broker{conn: conn, channel: channel, declared: make(map[string]struct{})}, nil
}

func (b *Broker) declare(queue string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.declared[queue]; ok {
		return nil
	}
	if _, err := b.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	b.declared[queue] = struct{}{}
	return nil
}

func (b *Broker) Publish(ctx context.Context, queue, key string, payload any) error {
	msg, err := newPublishing(key, payload)
	if err != nil {
		return err
	}
	if err := b.declare(queue); err != nil {
		return err
	}

	if err := b.channel.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func newPublishing(key string, payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    key,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

// Consume acks a delivery after handler succeeds; a failed delivery is rejected
// without requeue so a poison message cannot spin the worker.
func (b *Broker) Consume(ctx context.Context, queue string, handler func(context.Context, []byte) error) error {
	if err := b.declare(queue); err != nil {
		return err
	}

	deliveries, err := b.channel.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			if err := handler(ctx, d.Body); err != nil {
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (b *Broker) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
