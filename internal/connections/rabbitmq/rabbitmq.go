package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"curryhouse/internal/config"
)

// Exchange and routing keys shared by the API and the workers.
const (
	OrdersExchange = "orders_topic"

	TicketQueue     = "ticket_queue"
	TicketKeyBind   = "ticket.*"
	NotifyQueue     = "notify_queue"
	OrderCreatedKey = "order.created"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation // publisher confirms
	mu   sync.Mutex               // serializes Publish while waiting for a confirm
}

func Dial(cfg config.RabbitConfig) (*Client, error) {
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Channel() *amqp.Channel { return c.ch }

// Channel for a dedicated consumer, so consuming does not share the
// publishing channel.
func (c *Client) ConsumerChannel() (*amqp.Channel, error) {
	return c.conn.Channel()
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Publish sends a persistent message and waits for the broker's ack.
func (c *Client) Publish(ctx context.Context, key string, body []byte, messageID, correlationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	drainStaleConfirm(c.acks)

	if err := c.ch.PublishWithContext(
		ctx,
		OrdersExchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			Timestamp:     time.Now().UTC(),
			MessageId:     messageID,
			CorrelationId: correlationID,
			Body:          body,
		},
	); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainStaleConfirm discards a confirm left behind by a publish that
// timed out before the broker answered, so it cannot be mistaken for
// the ack of the next message.
func drainStaleConfirm(acks <-chan amqp.Confirmation) {
	select {
	case <-acks:
	default:
	}
}

// DeclareQueue declares a durable queue bound to the orders exchange.
// Safe to call from every process that touches the queue.
func (c *Client) DeclareQueue(queue, bindKey string) error {
	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	if err := c.ch.QueueBind(queue, bindKey, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", queue, err)
	}
	return nil
}
